package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// AnswerFallback replaces a machine answer when generation is unavailable.
const AnswerFallback = "Mi dispiace, non riesco a rispondere in questo momento."

const maxTagLength = 90

var (
	answerParams     = GenerationParams{Temperature: 0.7, TopP: 0.9, MaxOutputTokens: 200}
	tagParams        = GenerationParams{Temperature: 0.3, TopP: 0.8, MaxOutputTokens: 15}
	questionParams   = GenerationParams{Temperature: 0.7, TopP: 0.9, MaxOutputTokens: 200}
	evaluationParams = GenerationParams{Temperature: 0.2, TopP: 0.9, MaxOutputTokens: 300}
)

// LLMService builds the domain prompts on top of a Generator.
type LLMService interface {
	// GenerateAnswer never fails on unavailability; it returns AnswerFallback instead.
	GenerateAnswer(ctx context.Context, question, culturalContext string) string
	// GenerateTag returns an empty tag when generation is unavailable.
	GenerateTag(ctx context.Context, question string) string
	GenerateQuestion(ctx context.Context, themeName string) (string, error)
	EvaluateAnswer(ctx context.Context, question, answer string) (*Evaluation, error)
}

type llmService struct {
	generator Generator
}

func NewLLMService(generator Generator) LLMService {
	return &llmService{generator: generator}
}

func (s *llmService) GenerateAnswer(ctx context.Context, question, culturalContext string) string {
	prompt := fmt.Sprintf(`Sei un assistente esperto nella cultura italiana. Rispondi alla seguente domanda in modo accurato e culturalmente appropriato. Non dare risposte troppo lunghe.
La risposta deve essere umana e naturale, senza markdown, asterischi o suddivisioni in paragrafi: un unico paragrafo.
Non deve capirsi che la risposta è stata scritta da un modello linguistico.
Contesto culturale: %s

Domanda: %s

Rispondi in italiano in modo naturale e informativo:`, culturalContext, question)

	text, err := s.generator.Generate(ctx, prompt, answerParams)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate machine answer, using fallback")
		return AnswerFallback
	}
	return stripMarkup(text)
}

func (s *llmService) GenerateTag(ctx context.Context, question string) string {
	prompt := fmt.Sprintf(`Leggi attentamente la seguente affermazione.
Genera un singolo tag che ne rappresenti l'argomento principale, senza riassumerla.
Usa parole già presenti nell'affermazione quando possibile.
Il tag deve avere al massimo 3 parole, preferibilmente una o due, senza spiegazioni o punteggiatura.
Rispondi esclusivamente con il tag.
Affermazione: %s`, question)

	text, err := s.generator.Generate(ctx, prompt, tagParams)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to generate tag, leaving question untagged")
		return ""
	}
	return truncateTag(stripMarkup(text))
}

func (s *llmService) GenerateQuestion(ctx context.Context, themeName string) (string, error) {
	prompt := fmt.Sprintf(`Genera una domanda semplice e veloce sulla cultura italiana riguardante il tema: %[1]s
La domanda deve essere:
- Chiara e concisa
- Specifica per il tema %[1]s
- Adatta a un quiz sulla cultura italiana
- Non troppo lunga
Formato richiesto: solo la domanda, senza spiegazioni aggiuntive.`, themeName)

	text, err := s.generator.Generate(ctx, prompt, questionParams)
	if err != nil {
		return "", fmt.Errorf("failed to generate question for theme %q: %w", themeName, err)
	}
	text = stripMarkup(text)
	if text == "" {
		return "", &MalformedResponseError{Reason: "empty question", Raw: text}
	}
	return text, nil
}

// EvaluateAnswer asks for a 0-10 judgment and parses it. Parser failures are
// returned as *MalformedResponseError.
func (s *llmService) EvaluateAnswer(ctx context.Context, question, answer string) (*Evaluation, error) {
	prompt := fmt.Sprintf(`Sei un esperto di cultura italiana e valuti le risposte a un quiz.
Valuta la seguente risposta alla domanda indicata, considerando correttezza, completezza e aderenza alla cultura italiana.

Domanda: %s
Risposta: %s

Rispondi esattamente in questo formato, senza altro testo:
%s: [numero intero da 0 a 10]
%s: [breve spiegazione in italiano]`, question, answer, ScoreLabel, FeedbackLabel)

	raw, err := s.generator.Generate(ctx, prompt, evaluationParams)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate answer: %w", err)
	}

	evaluation, err := ParseEvaluation(raw)
	if err != nil {
		var malformed *MalformedResponseError
		if errors.As(err, &malformed) {
			log.Error().Str("raw", malformed.Raw).Msg("Unparseable evaluation from generation service")
		}
		return nil, err
	}
	evaluation.Score = clampScore(evaluation.Score)
	return evaluation, nil
}

func stripMarkup(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "*", ""))
}

// truncateTag keeps tags within the column size, cutting at the last word boundary.
func truncateTag(tag string) string {
	if len(tag) <= maxTagLength {
		return tag
	}
	tag = tag[:maxTagLength]
	if i := strings.LastIndex(tag, " "); i != -1 {
		tag = tag[:i]
	}
	return strings.TrimSpace(strings.ToValidUTF8(tag, ""))
}

func clampScore(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 10:
		return 10
	}
	return score
}
