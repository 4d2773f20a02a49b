package domain

// DefaultMunicipality is preselected on new drafts.
const DefaultMunicipality = "Rio Bonito do Iguaçu"

// DamageCategories is the fixed, ordered list of damage categories an
// engineer can select on a report.
var DamageCategories = []string{
	"Rachaduras",
	"Fissuras",
	"Trincas em Paredes",
	"Destelhamento",
	"Danos na Cobertura",
	"Queda de Forro",
	"Infiltrações",
	"Danos em Esquadrias",
	"Vidros Quebrados",
	"Queda de Muro",
	"Danos na Fundação",
	"Danos Estruturais",
	"Recalque de Piso",
	"Danos Elétricos",
	"Danos Hidráulicos",
	"Alagamento",
	"Desabamento Parcial",
	"Desabamento Total",
}

// Municipalities lists the Paraná municipalities offered by the form.
var Municipalities = []string{
	"Cascavel",
	"Chopinzinho",
	"Clevelândia",
	"Coronel Vivida",
	"Curitiba",
	"Foz do Iguaçu",
	"Francisco Beltrão",
	"Guarapuava",
	"Honório Serpa",
	"Laranjeiras do Sul",
	"Londrina",
	"Mangueirinha",
	"Maringá",
	"Nova Laranjeiras",
	"Palmas",
	"Pato Branco",
	"Ponta Grossa",
	"Porto Barreiro",
	"Quedas do Iguaçu",
	"Rio Bonito do Iguaçu",
	"Saudade do Iguaçu",
	"Virmond",
}

// IsDamageCategory reports whether category belongs to DamageCategories.
func IsDamageCategory(category string) bool {
	for _, c := range DamageCategories {
		if c == category {
			return true
		}
	}
	return false
}
