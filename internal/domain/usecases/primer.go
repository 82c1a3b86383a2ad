package usecases

import (
	"github.com/hansgunawan/portfolio/internal/domain/entities"
)

// ContextPrefix introduces the context document in the priming turn.
const ContextPrefix = "CONTEXT DATA:\n\n"

// DefaultPersona is the system instruction the assistant runs under.
const DefaultPersona = `Kamu adalah asisten AI untuk portfolio Hans Gunawan, mahasiswa Sistem Informasi UKDW yang passionate di full-stack development dan AI integration.

PERSONALITAS:
- Ramah, profesional, dan antusias
- Jawab dalam bahasa yang sama dengan pertanyaan (Indonesia/English)
- Gunakan emoji secukupnya untuk kesan friendly 😊

ATURAN PENTING:
1. HANYA gunakan informasi dari CONTEXT DATA yang diberikan
2. Jika tidak tahu jawabannya, katakan: "Maaf, informasi itu belum tersedia di portfolio saya"
3. JANGAN buat-buat informasi yang tidak ada
4. Highlight achievement dan project yang relevan
5. Kalau ditanya "Siapa Hans?", berikan overview singkat dan ajak bertanya lebih spesifik

CONTOH PERTANYAAN YANG BISA DIJAWAB:
- "Apa proyek terbaik Hans?"
- "Teknologi apa yang Hans kuasai?"
- "Ceritakan tentang project FITAI"
- "Hans pernah publish research paper apa?"
- "Apa achievement Hans?"

Selalu akhiri jawaban dengan pertanyaan follow-up yang relevan untuk mendorong conversation.`

// DefaultAcknowledgment is the synthetic assistant reply to the priming turn.
const DefaultAcknowledgment = "Terima kasih! Saya sudah memuat semua informasi tentang Hans Gunawan. Saya siap menjawab pertanyaan tentang profil, proyek, achievement, dan publikasinya. Ada yang ingin kamu tanyakan? 😊"

// SessionPrimer turns a context document and caller history into the exact
// conversation sent to the provider.
type SessionPrimer struct {
	persona        string
	acknowledgment string
}

// NewSessionPrimer creates a primer. Empty arguments select the defaults.
func NewSessionPrimer(persona, acknowledgment string) *SessionPrimer {
	if persona == "" {
		persona = DefaultPersona
	}
	if acknowledgment == "" {
		acknowledgment = DefaultAcknowledgment
	}
	return &SessionPrimer{
		persona:        persona,
		acknowledgment: acknowledgment,
	}
}

// Prime builds: persona, context turn, acknowledgment turn, history, message.
// The priming pair is emitted on every call; there is no provider-side session.
func (p *SessionPrimer) Prime(document string, req *entities.ChatRequest) entities.Conversation {
	turns := make([]entities.Turn, 0, len(req.History)+3)
	turns = append(turns,
		entities.Turn{Role: entities.RoleUser, Text: ContextPrefix + document},
		entities.Turn{Role: entities.RoleAssistant, Text: p.acknowledgment},
	)
	turns = append(turns, req.History...)
	turns = append(turns, entities.Turn{Role: entities.RoleUser, Text: req.Message})

	return entities.Conversation{
		System: p.persona,
		Turns:  turns,
	}
}
