package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/yourusername/ai-quiz-api/internal/pkg/errors"
	"github.com/yourusername/ai-quiz-api/pkg/gigachat"
)

// gradeAttempts — бюджет обращений к модели на одну оценку (вторая попытка — строгая)
const gradeAttempts = 2

// Fallback-сообщения, когда модель недоступна на всех попытках
const (
	gradeFallbackMessage = "Не получилось проверить ответ прямо сейчас. Попробуй отправить его ещё раз."
	finalFallbackMessage = "Не удалось получить отзыв от LLM сейчас. Попробуй нажать «Завершить тест» ещё раз."
)

// GradeVerdict — результат оценки одного ответа
type GradeVerdict struct {
	Ok       bool   `json:"ok"`
	Feedback string `json:"feedback"`
}

// FinalFeedback — итоговый отзыв по завершенной попытке
type FinalFeedback struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// ModelClient — интерфейс над клиентом GigaChat, который нужен оценщику.
// Выделен, чтобы в тестах подменять модель моком.
type ModelClient interface {
	Chat(ctx context.Context, prompt string) (string, error)
	ChatWithFunction(ctx context.Context, prompt string, fn gigachat.Function) (json.RawMessage, error)
}

// GraderService оценивает свободные ответы через LLM и следит за тем, чтобы
// фидбек соответствовал стилевой политике. Grade и ComposeFinalFeedback —
// тотальные функции: любой сбой модели превращается в безопасный fallback,
// наружу ошибка не выходит.
type GraderService struct {
	model ModelClient
}

// NewGraderService создает новый сервис оценивания
func NewGraderService(model ModelClient) *GraderService {
	return &GraderService{model: model}
}

// gradeFunction — схема структурированного ответа модели при оценке
var gradeFunction = gigachat.Function{
	Name:        "grade_result",
	Description: "Quiz grading result. Contains ok (boolean) and feedback (string).",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"ok": map[string]interface{}{
				"type":        "boolean",
				"description": "True if the user's answer is correct in essence; иначе false.",
			},
			"feedback": map[string]interface{}{
				"type":        "string",
				"description": "If ok=false: one very short hint without spoilers. If ok=true: short explanation with appropriate slang.",
			},
		},
		"required": []string{"ok", "feedback"},
	},
}

// Grade оценивает ответ пользователя на вопрос.
// Протокол: до двух обращений к модели (вторая попытка — со строгим промптом),
// после каждого — санитизация и стилевая проверка. Если обе попытки дали
// непроходной по стилю фидбек — локальный ремонт последнего вердикта.
// Если обе попытки упали — fallback-вердикт с ok=false.
func (s *GraderService) Grade(ctx context.Context, question, userAnswer string) GradeVerdict {
	pool := stablePickTerms(question+"\n"+userAnswer, stylePoolSize)

	var last *GradeVerdict
	for attempt := 0; attempt < gradeAttempts; attempt++ {
		strict := attempt == 1
		prompt := makeGradePrompt(question, userAnswer, pool, strict)

		raw, err := s.model.ChatWithFunction(ctx, prompt, gradeFunction)
		if err != nil {
			log.Printf("[GraderService.Grade] Сбой обращения к модели (попытка %d): %v", attempt+1, err)
			continue
		}

		var verdict GradeVerdict
		if err := json.Unmarshal(raw, &verdict); err != nil {
			log.Printf("[GraderService.Grade] Невалидные аргументы от модели (попытка %d): %v", attempt+1, err)
			continue
		}

		verdict.Feedback = sanitizeOutput(verdict.Feedback, feedbackBudget(verdict.Ok))
		last = &verdict

		if err := checkStyle(verdict.Feedback, pool, verdict.Ok); err != nil {
			log.Printf("[GraderService.Grade] Фидбек отклонен (попытка %d): %v", attempt+1, err)
			continue
		}
		return verdict
	}

	if last == nil {
		// Модель не ответила ни разу — квиз не должен останавливаться
		log.Printf("[GraderService.Grade] Возврат fallback-вердикта: %v", apperrors.ErrModelCall)
		return GradeVerdict{Ok: false, Feedback: gradeFallbackMessage}
	}

	// Локальный ремонт: убираем разделители листинга и заново обрезаем
	last.Feedback = sanitizeOutput(stripListSeparators(last.Feedback), feedbackBudget(last.Ok))
	return *last
}

// ComposeFinalFeedback собирает итоговый отзыв по финальным счетчикам сессии.
// Входы зажимаются в допустимые диапазоны; passed = correct >= passScore.
func (s *GraderService) ComposeFinalFeedback(ctx context.Context, correct, answered, total, passScore int) FinalFeedback {
	if total < 1 {
		total = 1
	}
	if answered < 0 {
		answered = 0
	} else if answered > total {
		answered = total
	}
	if correct < 0 {
		correct = 0
	} else if correct > total {
		correct = total
	}
	if passScore < 0 {
		passScore = 0
	}

	passed := correct >= passScore

	seed := fmt.Sprintf("%d/%d/%d/%d/%t", correct, answered, total, passScore, passed)
	pool := stablePickTerms(seed, stylePoolSize)

	msg := s.chatText(ctx, makeFinalPrompt(correct, answered, total, passScore, passed, pool), finalMaxChars, 2)
	if msg == "" {
		msg = finalFallbackMessage
	}

	// Один строгий репромпт, если отзыв похож на список или термины не встроены
	if checkStyle(msg, pool, true) != nil {
		if msg2 := s.chatText(ctx, makeStrictFinalPrompt(correct, answered, total, passScore, passed, pool), finalStrictMaxChars, 1); msg2 != "" {
			msg = msg2
		}
	}

	return FinalFeedback{Passed: passed, Message: sanitizeOutput(msg, finalMaxChars)}
}

// chatText запрашивает у модели свободный текст с бюджетом попыток.
// Возвращает пустую строку, если все попытки не удались.
func (s *GraderService) chatText(ctx context.Context, prompt string, maxChars, tries int) string {
	if tries < 1 {
		tries = 1
	}
	for i := 0; i < tries; i++ {
		txt, err := s.model.Chat(ctx, prompt)
		if err != nil {
			log.Printf("[GraderService.chatText] Сбой обращения к модели (попытка %d): %v", i+1, err)
			continue
		}
		if txt = sanitizeOutput(txt, maxChars); txt != "" {
			return txt
		}
	}
	return ""
}

// feedbackBudget возвращает лимит длины фидбека для данного вердикта
func feedbackBudget(ok bool) int {
	if ok {
		return explanationMaxChars
	}
	return hintMaxChars
}

// checkStyle проверяет фидбек: не вывалка списка и термины из пула реально
// встроены (минимум 2 для ok=true, 1 для наводки при ok=false).
func checkStyle(feedback string, pool []string, ok bool) error {
	if looksLikeListDump(feedback) {
		return fmt.Errorf("%w: текст похож на список", apperrors.ErrStyleCompliance)
	}
	need := 2
	if !ok {
		need = 1
	}
	if used := countTermsUsed(feedback, pool); used < need {
		return fmt.Errorf("%w: терминов из пула %d, нужно %d", apperrors.ErrStyleCompliance, used, need)
	}
	return nil
}

func styleRulesWithPool(pool []string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Пиши по-русски, в зумерском стиле, но по делу.

КРИТИЧНО:
- Встрой в текст 2–5 терминов/фраз ИЗ ЭТОГО ПУЛА (выбирай уместно по смыслу):
%s

НЕЛЬЗЯ:
- выводить пул/список/словарик/чеклист
- перечислять термины “через запятые/палочки” ради галочки
- писать “термины:” / “СЛЕНГ-...”
- мат, токсичность, унижение

Правило естественности:
термины должны быть частью предложений, а не отдельной строкой-списком.
`, strings.Join(pool, ", ")))
}

func makeGradePrompt(question, userAnswer string, pool []string, strict bool) string {
	extra := ""
	if strict {
		extra = strings.TrimSpace(`
СТРОГО:
- если не вставишь 2–5 терминов из пула внутри обычных предложений — переформулируй
- никаких списков/чеклистов/перечней
`)
	}

	return strings.TrimSpace(fmt.Sprintf(`
Ты — мемный, но строгий проверяющий квиза по ИИ.

%s

%s

Нужно вернуть объект:
- ok: boolean
- feedback: string

Критерии:
- ok=true, если ключевая идея верна.
- ok=false, если ключевой идеи нет/она неверна.

Ограничения для feedback:
1) Если ok=false:
   - ОДНА короткая наводка (1 предложение, максимум 140–180 символов)
   - без спойлеров правильного ответа
   - используй 1–2 термина из пула или подобный зумерский сленг уместно
2) Если ok=true:
   - 4–8 предложений
   - объясни суть корректно
   - используй 2–5 терминов из пула уместно
   - 1–3 эмодзи

ВОПРОС:
%s

ОТВЕТ ПОЛЬЗОВАТЕЛЯ:
%s
`, styleRulesWithPool(pool), extra, question, userAnswer))
}

func makeFinalPrompt(correct, answered, total, passScore int, passed bool, pool []string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Ты — ведущий квиза по ИИ.

%s

Сделай итоговый отзыв (3–6 предложений):
- Укажи прогресс: answered/total и correct/total
- Укажи порог pass_score
- Скажи прошёл/не прошёл (по-доброму)
- Дай 2 коротких “что подтянуть” (общими темами, без спойлеров)
- Используй 2–5 терминов из пула уместно
- 2–4 эмодзи
- 1 мемная фраза (встроенная в текст, не списком)

Данные:
total: %d
answered: %d
correct: %d
pass_score: %d
passed: %t

Верни только текст (без JSON).
`, styleRulesWithPool(pool), total, answered, correct, passScore, passed))
}

func makeStrictFinalPrompt(correct, answered, total, passScore int, passed bool, pool []string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Ты — ведущий квиза по ИИ.

%s

СТРОГО:
- никакого списка/чеклиста/перечня
- 2–5 терминов из пула внутри обычных предложений

Сделай отзыв 3–5 предложений по данным:
correct=%d, answered=%d, total=%d, pass_score=%d, passed=%t.
Верни только текст.
`, styleRulesWithPool(pool), correct, answered, total, passScore, passed))
}
