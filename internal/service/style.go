package service

import (
	"crypto/sha256"
	"encoding/binary"
	"regexp"
	"strings"
)

// Лимиты длины фидбека по ярусам
const (
	hintMaxChars        = 180  // короткая наводка при ok=false
	explanationMaxChars = 1200 // развернутое объяснение при ok=true
	finalMaxChars       = 900  // итоговый отзыв
	finalStrictMaxChars = 800  // итоговый отзыв после строгого репромпта
)

// Размер пула терминов, выбираемого из словаря под конкретный seed
const stylePoolSize = 14

// Границы слова заданы через \p{L}: ASCII-ориентированный \b в RE2 не
// срабатывает на кириллице.
var profanityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(^|[^\p{L}])(бля(?:дь|ть|ха)?)([^\p{L}]|$)`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(сука)([^\p{L}]|$)`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(хуй(?:ня)?)([^\p{L}]|$)`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(пизд(?:а|ец)?)([^\p{L}]|$)`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(еб(?:ать|ан)?)([^\p{L}]|$)`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(нахуй)([^\p{L}]|$)`),
	regexp.MustCompile(`(?i)(^|[^\p{L}])(заеб)([^\p{L}]|$)`),
}

// zoomerTerms — словарь сленга, из которого детерминированно собирается пул
// под каждый вопрос/ответ. Порядок имеет значение: выбор идет шагом по индексам.
var zoomerTerms = []string{
	"Кринж", "Лютый кринж", "Имба", "Мид", "Топ", "Скам", "Сигма",
	"Норм", "нормис", "Фейл", "Лол", "ор", "Жиза", "База", "Факт", "Рил", "Не рил",
	"Душно", "Душнила", "Тильт", "Вайб", "Нет вайба", "Чил", "Чиллово",
	"NPC", "Бот", "Фейк", "Рэд флаг", "Грин флаг",
	"Сой", "Чад", "Скуф",
	"Залетело", "Флоп", "Флексить", "Заскамить", "Забайтить",
	"Хайп", "Хайпануть", "Ливнуть",
	"Ризз", "Нет ризза", "Краш", "Крашнуться",
	"Луз", "Вин", "Тащить", "Скилл", "Нуб", "Баф", "Нерф", "Мета", "АФК",
	"Это база", "Словил вайб", "Минус вайб", "Я в тильте", "Плюс реп", "Минус карма",
	"Чисто по фану", "По приколу", "Не шарю", "Шаришь?", "Скилл ишью",
	"Бумер", "Миллениал", "Зумер", "Альфа", "Бумерский прикол",
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	listMarkerRe    = regexp.MustCompile(`(?i)(термины|список)\s*:\s*`)
	pipeSeparatorRe = regexp.MustCompile(`\s*\|\s*`)
)

// maskProfanity заменяет матерные слова на тире. Граничные группы съедают
// разделитель, поэтому соседние повторы одного слова не покрываются за один
// проход — замена гоняется до неподвижной точки.
func maskProfanity(text string) string {
	out := text
	for _, pat := range profanityPatterns {
		for {
			masked := pat.ReplaceAllString(out, "$1—$3")
			if masked == out {
				break
			}
			out = masked
		}
	}
	return out
}

// sanitizeOutput нормализует пробелы, маскирует мат и обрезает текст до maxChars
// символов (рун, не байт — фидбек кириллический).
func sanitizeOutput(text string, maxChars int) string {
	t := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	t = maskProfanity(t)
	runes := []rune(t)
	if len(runes) > maxChars {
		t = strings.TrimRight(string(runes[:maxChars]), " ")
	}
	return t
}

// stablePickTerms детерминированно выбирает k терминов из словаря.
// Одинаковый seed всегда дает одинаковую последовательность: старт —
// первые 4 байта sha256(seed) по модулю длины словаря, дальше шаг 7
// с пропуском дублей, пока не наберется k или не пройдем словарь дважды.
func stablePickTerms(seed string, k int) []string {
	base := make([]string, 0, len(zoomerTerms))
	for _, t := range zoomerTerms {
		if strings.TrimSpace(t) != "" {
			base = append(base, t)
		}
	}
	if len(base) == 0 {
		return nil
	}

	if k < 6 {
		k = 6
	} else if k > 20 {
		k = 20
	}

	h := sha256.Sum256([]byte(seed))
	start := int(binary.BigEndian.Uint32(h[:4]) % uint32(len(base)))

	out := make([]string, 0, k)
	seen := make(map[string]struct{}, k)
	for i := 0; len(out) < k && i < len(base)*2; i++ {
		term := base[(start+i*7)%len(base)]
		if _, ok := seen[term]; !ok {
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

// countTermsUsed считает, сколько терминов пула встречается в тексте
// (регистронезависимое вхождение подстроки).
func countTermsUsed(text string, pool []string) int {
	low := strings.ToLower(text)
	used := 0
	for _, term := range pool {
		if term != "" && strings.Contains(low, strings.ToLower(term)) {
			used++
		}
	}
	return used
}

// looksLikeListDump возвращает true, если текст похож на вывалку
// списка/словарика вместо связного фидбека.
func looksLikeListDump(text string) bool {
	low := strings.ToLower(text)
	if strings.Contains(low, "чеклист") || strings.Contains(low, "словар") {
		return true
	}
	if strings.Contains(text, " | ") {
		return true
	}
	if strings.Count(text, ",") >= 12 || strings.Count(text, ";") >= 10 {
		return true
	}
	return listMarkerRe.MatchString(text)
}

// stripListSeparators — локальный ремонт фидбека, не прошедшего проверку
// после всех попыток: убирает явные разделители "листинга".
func stripListSeparators(text string) string {
	return strings.TrimSpace(pipeSeparatorRe.ReplaceAllString(text, " "))
}
