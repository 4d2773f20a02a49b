package domain

import "fmt"

// Classification is the four-level damage severity assigned by the engineer.
type Classification string

const (
	ClassificationMinimal Classification = "Danos Mínimos"
	ClassificationPartial Classification = "Danos Parciais"
	ClassificationSevere  Classification = "Danos Severos"
	ClassificationRuin    Classification = "Ruína"
)

// Classifications lists every classification in severity order.
var Classifications = []Classification{
	ClassificationMinimal,
	ClassificationPartial,
	ClassificationSevere,
	ClassificationRuin,
}

// Severity is the destruction level derived from a classification.
type Severity struct {
	Label      string `json:"nivelDestruicao"`
	Percentage string `json:"percentualDestruicao"`
}

var severities = map[Classification]Severity{
	ClassificationMinimal: {Label: "Sem Destruição", Percentage: "10%"},
	ClassificationPartial: {Label: "Destruição Parcial Leve", Percentage: "40%"},
	ClassificationSevere:  {Label: "Destruição Parcial Grave", Percentage: "70%"},
	ClassificationRuin:    {Label: "Destruição Total", Percentage: "100%"},
}

// Derive returns the destruction label and percentage for c. Values outside
// the enumeration cannot be constructed through ParseClassification, so the
// zero Severity only shows up for the zero Classification.
func Derive(c Classification) Severity {
	return severities[c]
}

// ParseClassification validates s against the enumeration.
func ParseClassification(s string) (Classification, error) {
	c := Classification(s)
	if _, ok := severities[c]; !ok {
		return "", fmt.Errorf("%w: classificacao %q", ErrInvalidValue, s)
	}
	return c, nil
}

// Typology is the building type of the inspected structure.
type Typology string

const (
	TypologyMasonry            Typology = "Casa de Alvenaria"
	TypologyWood               Typology = "Casa de Madeira"
	TypologyMixed              Typology = "Casa Mista"
	TypologyShop               Typology = "Loja Comercial"
	TypologyCommercialBuilding Typology = "Prédio Comercial"
	TypologyCommercialShed     Typology = "Pavilhão Comercial"
	TypologyIndustrialShed     Typology = "Pavilhão Industrial"
	TypologyPublicFacility     Typology = "Equipamento Público"
	TypologyOther              Typology = "Outro"
)

// Typologies lists every typology in form order.
var Typologies = []Typology{
	TypologyMasonry,
	TypologyWood,
	TypologyMixed,
	TypologyShop,
	TypologyCommercialBuilding,
	TypologyCommercialShed,
	TypologyIndustrialShed,
	TypologyPublicFacility,
	TypologyOther,
}

// ParseTypology validates s against the enumeration.
func ParseTypology(s string) (Typology, error) {
	for _, t := range Typologies {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: tipologia %q", ErrInvalidValue, s)
}
