package internal

import (
	"html"
	"strings"
)

// FAQItem is one question/answer pair shown under a category heading in the
// confirmation email.
type FAQItem struct {
	Pregunta  string
	Respuesta string
}

// faqGeneral is always included; faqPorJuego is keyed by game name and only
// the categories of the games the registrant actually selected are folded in.
var faqGeneral = []FAQItem{
	{"¿Necesito llevar algo al evento?", "Solo tu DNI y el código QR de confirmación que recibiste por email."},
	{"¿La entrada tiene costo?", "No, la inscripción y la entrada son gratuitas."},
	{"¿Puedo inscribirme el mismo día del evento?", "Sí, sujeto a disponibilidad de lugares, pero recomendamos inscribirse antes."},
}

var faqPorJuego = map[string][]FAQItem{
	"Counter-Strike 2": {
		{"¿Necesito llevar mis periféricos?", "Podés llevar mouse, teclado y auriculares propios. Las PCs las provee la organización."},
		{"¿Cuál es el formato del torneo?", "Fase de grupos y luego eliminación directa, partidas MD1 hasta semifinales."},
	},
	"League of Legends": {
		{"¿Necesito tener mi cuenta?", "Sí, cada jugador compite con su propia cuenta en el servidor LAS."},
		{"¿Cuál es el formato del torneo?", "Eliminación directa a partida única, final al mejor de tres."},
	},
	"Valorant": {
		{"¿Necesito tener mi cuenta?", "Sí, con el cliente actualizado. Las PCs tienen el juego preinstalado."},
	},
	"EA FC 24": {
		{"¿Se juega en consola o PC?", "En consola, con joysticks provistos por la organización."},
	},
}

// BuildFAQHTML renders the FAQ fragment embedded in confirmation emails:
// one block per selected game that has entries, deduplicated by game name,
// plus the general block at the end.
func BuildFAQHTML(juegos []string) string {
	var b strings.Builder
	seen := map[string]bool{}
	for _, j := range juegos {
		if seen[j] {
			continue
		}
		seen[j] = true
		items, ok := faqPorJuego[j]
		if !ok {
			continue
		}
		writeFAQSection(&b, j, items)
	}
	writeFAQSection(&b, "Información general", faqGeneral)
	return b.String()
}

func writeFAQSection(b *strings.Builder, titulo string, items []FAQItem) {
	b.WriteString("<h3>" + html.EscapeString(titulo) + "</h3>")
	for _, it := range items {
		b.WriteString("<p><strong>" + html.EscapeString(it.Pregunta) + "</strong><br>")
		b.WriteString(html.EscapeString(it.Respuesta) + "</p>")
	}
}
