package document

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/laudo-service/internal/domain"
)

// Fixed wording printed on every report.
const (
	Title         = "Laudo Técnico de Vistoria Post-Evento"
	SectionTitle  = "Relato de Avarias Técnicas"
	NoDamages     = "Nenhum dano registrado."
	NoDescription = "Sem observações detalhadas."
	NotAvailable  = "N/A"
	FinalLabel    = "Classificação Final"
	Signature     = "CREA/PR • Defesa Civil Paraná"
)

const ellipsis = "…"

var (
	titleStyle    = Style{Bold, 18, colorNavy}
	controlStyle  = Style{Bold, 10, colorSlate500}
	labelStyle    = Style{Bold, 10, colorOrange600}
	valueStyle    = Style{Regular, 10, colorSlate900}
	sectionStyle  = Style{Bold, 12, colorNavy}
	categoryStyle = Style{Bold, 10, colorSlate800}
	descStyle     = Style{Italic, 9, colorSlate600}
	emptyStyle    = Style{Italic, 12, colorSlate400}
	moreStyle     = Style{Bold, 12, colorOrange600}
	noteStyle     = Style{BoldItalic, 9, colorOrange600}
	finalStyle    = Style{Bold, 9, colorOrange400}
	classStyle    = Style{Bold, 14, colorNavy}
	levelStyle    = Style{Bold, 10, colorOrange600}
	percentStyle  = Style{Bold, 20, colorOrange}
	signerStyle   = Style{Bold, 10, colorSlate900}
	creaStyle     = Style{Bold, 8, colorSlate400}
)

const (
	panelPadding   = 24.0
	columnGap      = 16.0
	blockGap       = 24.0
	descIndent     = 16.0
	thumbWidth     = 96.0
	thumbHeight    = 72.0
	thumbGap       = 8.0
	conclusionGap  = 40.0
	signatureWidth = 300.0
)

// Composer lays reports out on the page.
type Composer struct {
	fonts *Fonts
}

func NewComposer(fonts *Fonts) *Composer {
	return &Composer{fonts: fonts}
}

// Compose lays out r as printed at now. eng is the roster entry of the
// report's engineer, or the zero value when the engineer is not registered.
func (c *Composer) Compose(r domain.Report, eng domain.Engineer, now time.Time) Layout {
	b := &builder{
		faces:  newFaceCache(c.fonts, DPI),
		layout: Layout{Width: PageWidth, Height: PageHeight},
		left:   MarginSide,
		right:  PageWidth - MarginSide,
		y:      MarginTop,
	}
	defer b.faces.close()

	b.header(r.ID, now)
	b.details(r)
	top := b.conclusionTop()
	b.damages(r.Damages, top)
	b.conclusion(r, eng, top)
	return b.layout
}

type builder struct {
	faces       *faceCache
	layout      Layout
	left, right float64
	y           float64
}

type field struct {
	label, value string
	maxLines     int
}

// mark records the builder state so a block that does not fit can be undone.
type mark struct {
	y                           float64
	boxes, rules, images, texts int
}

func (b *builder) mark() mark {
	return mark{b.y, len(b.layout.Boxes), len(b.layout.Rules), len(b.layout.Images), len(b.layout.Texts)}
}

func (b *builder) rollback(m mark) {
	b.y = m.y
	b.layout.Boxes = b.layout.Boxes[:m.boxes]
	b.layout.Rules = b.layout.Rules[:m.rules]
	b.layout.Images = b.layout.Images[:m.images]
	b.layout.Texts = b.layout.Texts[:m.texts]
}

func (b *builder) header(id int, now time.Time) {
	center := (b.left + b.right) / 2

	title := strings.ToUpper(Title)
	w := b.faces.width(titleStyle, title)
	lh := lineHeight(titleStyle, 1.2)
	b.line(center-w/2, b.y, title, titleStyle, lh)
	b.y += lh + 4
	b.rule(center-w/2, b.y, center+w/2, b.y, 2, colorOrange400)
	b.y += 10

	control := fmt.Sprintf("CONTROLE Nº %04d - ANO %d", id, now.Year())
	lh = lineHeight(controlStyle, 1.4)
	b.line(center-b.faces.width(controlStyle, control)/2, b.y, control, controlStyle, lh)
	b.y += lh + 28
}

func (b *builder) details(r domain.Report) {
	top := b.y
	left, right := b.left+panelPadding, b.right-panelPadding
	colWidth := (right - left - columnGap) / 2

	y := top + panelPadding
	yLeft := b.fields(left, colWidth, y, []field{
		{"Município", r.Municipality, 2},
		{"Data", r.Date, 2},
		{"Proprietário", orNotAvailable(r.Owner), 2},
		{"Tipologia", r.TypologyLabel(), 2},
	})
	yRight := b.fields(left+colWidth+columnGap, colWidth, y, []field{
		{"Coordenadas", coordinates(r), 2},
		{"Engenheiro", r.Engineer, 2},
		{"Inscrição Mun.", orNotAvailable(r.MunicipalRegistration), 2},
	})

	y = max(yLeft, yRight) + 8
	b.rule(left, y, right, y, 1, colorSlate200)
	y = b.fields(left, right-left, y+12, []field{{"Localização", r.Address, 2}})

	bottom := y + panelPadding - 8
	b.box(Box{X: b.left, Y: top, W: b.right - b.left, H: bottom - top, Radius: 16, Fill: colorSlate50, Stroke: colorSlate100})
	b.y = bottom + 32
}

// fields prints label/value rows starting at y and returns the y below them.
// Values wrap in the space right of their label, up to the field's line cap.
func (b *builder) fields(x, width, y float64, fields []field) float64 {
	lh := lineHeight(valueStyle, 1.5)
	for _, f := range fields {
		label := strings.ToUpper(f.label) + ":"
		lw := b.faces.width(labelStyle, label) + 6
		b.line(x, y, label, labelStyle, lh)
		lines := b.wrap(valueStyle, f.value, width-lw)
		if maxLines := max(1, f.maxLines); len(lines) > maxLines {
			lines = b.truncate(valueStyle, lines, maxLines, width-lw)
			b.layout.Overflow = true
		}
		for _, l := range lines {
			b.line(x+lw, y, l, valueStyle, lh)
			y += lh
		}
		y += 8
	}
	return y
}

// truncate keeps the first n lines and ends the last one with an ellipsis.
func (b *builder) truncate(st Style, lines []string, n int, maxWidth float64) []string {
	if n <= 0 {
		return nil
	}
	kept := append([]string{}, lines[:n]...)
	runes := []rune(strings.TrimRight(kept[n-1], " "))
	for len(runes) > 0 && b.faces.width(st, string(runes)+ellipsis) > maxWidth {
		runes = runes[:len(runes)-1]
	}
	kept[n-1] = strings.TrimRight(string(runes), " ") + ellipsis
	return kept
}

func (b *builder) damages(damages []domain.DamageEntry, limit float64) {
	lh := lineHeight(sectionStyle, 1.4)
	b.rule(b.left+2, b.y, b.left+2, b.y+lh, 4, colorOrange)
	b.line(b.left+12, b.y, strings.ToUpper(SectionTitle), sectionStyle, lh)
	b.y += lh + 16

	if len(damages) == 0 {
		lh = lineHeight(emptyStyle, 1.5)
		w := b.faces.width(emptyStyle, NoDamages)
		b.line((b.left+b.right)/2-w/2, b.y, NoDamages, emptyStyle, lh)
		b.y += lh
		return
	}

	bottom := limit - 16
	for i, d := range damages {
		hidden := len(damages) - i - 1
		// A full block must leave room for the hidden-blocks note below it.
		reserve := 0.0
		if hidden > 0 {
			reserve = blockGap + hiddenNoteHeight()
		}

		m := b.mark()
		b.damage(d, math.Inf(1))
		if b.y+reserve <= bottom {
			b.y += blockGap
			continue
		}

		b.rollback(m)
		b.layout.Overflow = true
		room := bottom
		if hidden > 0 {
			room -= 8 + hiddenNoteHeight()
		}
		if i > 0 && b.y+b.minDamageHeight(d) > room {
			b.hiddenNote(hidden + 1)
			return
		}
		b.damage(d, room)
		if hidden > 0 {
			b.y += 8
			b.hiddenNote(hidden)
		}
		return
	}
}

// damage prints one block. The heading is always printed; description lines
// and photos below bottom are cut, the last kept line ending in an ellipsis.
func (b *builder) damage(d domain.DamageEntry, bottom float64) {
	width := b.right - b.left
	lh := lineHeight(categoryStyle, 1.4)
	for _, l := range b.wrap(categoryStyle, strings.ToUpper(d.Category), width) {
		b.line(b.left, b.y, l, categoryStyle, lh)
		b.y += lh
	}
	b.y += 4

	top := b.y
	text := d.Description
	if strings.TrimSpace(text) == "" {
		text = NoDescription
	}
	lh = lineHeight(descStyle, 1.625)
	lines := b.wrap(descStyle, text, width-descIndent)
	fit := 0
	for fit < len(lines) && b.y+float64(fit+1)*lh <= bottom {
		fit++
	}
	if fit < len(lines) {
		lines = b.truncate(descStyle, lines, fit, width-descIndent)
	}
	for _, l := range lines {
		b.line(b.left+descIndent, b.y, l, descStyle, lh)
		b.y += lh
	}
	if len(d.Photos) > 0 && b.y+8+thumbHeight <= bottom {
		b.y += 8
		b.thumbnails(d.Photos, b.left+descIndent)
	}
	b.rule(b.left+0.5, top, b.left+0.5, b.y, 1, colorSlate200)
}

// minDamageHeight is the space taken by a block's heading and one line of
// description.
func (b *builder) minDamageHeight(d domain.DamageEntry) float64 {
	headings := len(b.wrap(categoryStyle, strings.ToUpper(d.Category), b.right-b.left))
	return float64(headings)*lineHeight(categoryStyle, 1.4) + 4 + lineHeight(descStyle, 1.625)
}

// hiddenNote tells the reader how many damage blocks did not fit the page.
func (b *builder) hiddenNote(n int) {
	note := fmt.Sprintf("+%d avarias não exibidas", n)
	if n == 1 {
		note = "+1 avaria não exibida"
	}
	b.line(b.left, b.y, note, noteStyle, hiddenNoteHeight())
	b.y += hiddenNoteHeight()
}

func hiddenNoteHeight() float64 {
	return lineHeight(noteStyle, 1.4)
}

// thumbnails prints one row of photo frames. When the photos do not fit, the
// last frame shows how many were left out.
func (b *builder) thumbnails(photos []string, x float64) {
	fit := max(1, int((b.right-x+thumbGap)/(thumbWidth+thumbGap)))
	shown := photos
	if len(photos) > fit {
		shown = photos[:fit-1]
	}

	for i, p := range shown {
		tx := x + float64(i)*(thumbWidth+thumbGap)
		b.box(Box{X: tx, Y: b.y, W: thumbWidth, H: thumbHeight, Radius: 6, Fill: colorSlate100, Stroke: colorSlate200})
		b.layout.Images = append(b.layout.Images, Image{X: tx + 2, Y: b.y + 2, W: thumbWidth - 4, H: thumbHeight - 4, Source: p})
	}
	if extra := len(photos) - len(shown); extra > 0 {
		tx := x + float64(len(shown))*(thumbWidth+thumbGap)
		b.box(Box{X: tx, Y: b.y, W: thumbWidth, H: thumbHeight, Radius: 6, Fill: colorOrange50, Stroke: colorOrange100})
		label := fmt.Sprintf("+%d", extra)
		lh := lineHeight(moreStyle, 1.2)
		b.line(tx+thumbWidth/2-b.faces.width(moreStyle, label)/2, b.y+(thumbHeight-lh)/2, label, moreStyle, lh)
	}
	b.y += thumbHeight
}

// conclusionBoxHeight is the height of the classification box.
func conclusionBoxHeight() float64 {
	return panelPadding + lineHeight(finalStyle, 1.4) + 4 + lineHeight(classStyle, 1.2) + 4 +
		lineHeight(levelStyle, 1.4) + panelPadding
}

// conclusionTop is where the conclusion area starts; damage blocks stay above it.
func (b *builder) conclusionTop() float64 {
	return PageHeight - MarginBottom - conclusionBoxHeight() - conclusionGap
}

func (b *builder) conclusion(r domain.Report, eng domain.Engineer, top float64) {
	b.rule(b.left, top, b.right, top, 2, colorSlate100)

	boxTop := top + conclusionGap
	boxBottom := boxTop + conclusionBoxHeight()

	final := strings.ToUpper(FinalLabel)
	class := strings.ToUpper(string(r.Classification))
	textWidth := max(
		b.faces.width(finalStyle, final),
		b.faces.width(classStyle, class),
		b.faces.width(levelStyle, r.Label),
	)
	pctWidth := b.faces.width(percentStyle, r.Percentage)
	boxWidth := max(200, panelPadding+textWidth+16+pctWidth+panelPadding)
	b.box(Box{X: b.left, Y: boxTop, W: boxWidth, H: boxBottom - boxTop, Radius: 24, Fill: colorOrange50, Stroke: colorOrange100})

	x := b.left + panelPadding
	y := boxTop + panelPadding
	lh := lineHeight(finalStyle, 1.4)
	b.line(x, y, final, finalStyle, lh)
	y += lh + 4
	lh = lineHeight(classStyle, 1.2)
	b.line(x, y, class, classStyle, lh)
	b.line(b.left+boxWidth-panelPadding-pctWidth, y, r.Percentage, percentStyle, lh)
	y += lh + 4
	b.line(x, y, r.Label, levelStyle, lineHeight(levelStyle, 1.4))

	// Signature block, bottom aligned with the box.
	sigLeft := b.right - signatureWidth
	center := sigLeft + signatureWidth/2
	name := eng.Name
	if name == "" {
		name = r.Engineer
	}
	name = strings.ToUpper(name)
	crea := Signature
	if eng.License != "" {
		crea = strings.Replace(Signature, "CREA/PR", "CREA/PR "+eng.License, 1)
	}
	crea = strings.ToUpper(crea)

	nameLH := lineHeight(signerStyle, 1.4)
	creaLH := lineHeight(creaStyle, 1.4)
	y = boxBottom - creaLH - nameLH
	b.line(center-b.faces.width(creaStyle, crea)/2, y+nameLH, crea, creaStyle, creaLH)
	b.line(center-b.faces.width(signerStyle, name)/2, y, name, signerStyle, nameLH)
	b.rule(sigLeft, y-8, b.right, y-8, 2, colorSlate900)
}

// line adds one line of text whose line box starts at top.
func (b *builder) line(x, top float64, s string, st Style, lh float64) {
	if s == "" {
		return
	}
	size := px(st.Size)
	baseline := top + (lh-size)/2 + size*0.8
	b.layout.Texts = append(b.layout.Texts, Text{X: x, Y: baseline, Content: s, Style: st})
}

func (b *builder) rule(x1, y1, x2, y2, width float64, c color.RGBA) {
	b.layout.Rules = append(b.layout.Rules, Rule{X1: x1, Y1: y1, X2: x2, Y2: y2, Width: width, Color: c})
}

func (b *builder) box(box Box) {
	b.layout.Boxes = append(b.layout.Boxes, box)
}

// wrap breaks s into lines no wider than maxWidth. Explicit newlines are kept
// and words wider than a line are split between characters.
func (b *builder) wrap(st Style, s string, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, w := range strings.Fields(para) {
			for b.faces.width(st, w) > maxWidth {
				head, tail := b.splitWord(st, w, maxWidth)
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, head)
				w = tail
			}
			if w == "" {
				continue
			}
			if line == "" {
				line = w
				continue
			}
			if candidate := line + " " + w; b.faces.width(st, candidate) <= maxWidth {
				line = candidate
			} else {
				lines = append(lines, line)
				line = w
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// splitWord returns the longest prefix of w that fits, at least one rune.
func (b *builder) splitWord(st Style, w string, maxWidth float64) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && b.faces.width(st, string(runes[:n+1])) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

func lineHeight(st Style, factor float64) float64 {
	return px(st.Size) * factor
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func coordinates(r domain.Report) string {
	if _, _, ok := r.Coordinates(); !ok {
		return NotAvailable
	}
	return r.Latitude + ", " + r.Longitude
}
