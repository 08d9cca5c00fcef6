package render

import (
	"fmt"
	"strings"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

const Welcome = `👋 Привет! Я помогаю превратить идею проекта в структурированный бриф.

Расскажи своими словами, что ты хочешь сделать, — текстом, голосом или картинкой-референсом. Я задам уточняющие вопросы и соберу всё в документ.

Команды:
/new — начать новый бриф
/summary — показать, что уже собрано
/final — сгенерировать документ
/cancel — отменить текущий бриф`

const Help = `Как это работает:

1. Жми /new и описывай проект в свободной форме.
2. Я раскладываю ответы по полям брифа и подсказываю, чего не хватает.
3. Можно отвечать голосовыми — я их расшифрую.
4. Картинки-референсы тоже принимаются: опишу и добавлю в бриф.
5. Когда обязательные поля заполнены, /final соберёт документ с рисками и открытыми вопросами.

Справочные вопросы («как правильно составить бриф?») я отвечаю по базе знаний.`

const NewBrief = `🚀 Начинаем новый бриф!

Опиши проект своими словами: что хочешь сделать и зачем. Дальше я сам спрошу про тип, платформу, сроки и бюджет.`

const Cancelled = "❌ Бриф отменён. Начать заново — /new"

const NoActiveSession = "Сейчас нет активного брифа. Начни с /new"

const Generating = "⏳ Генерирую бриф проекта..."

// Summary renders the collected state as a Telegram HTML message.
func Summary(data *entity.BriefData) string {
	if data == nil {
		return "📋 Пока нет собранной информации.\n\nНачни с /new"
	}

	var lines []string
	lines = append(lines, "📋 <b>Собранная информация:</b>\n")

	if data.ProjectName != "" {
		lines = append(lines, fmt.Sprintf("📌 <b>Название:</b> %s", data.ProjectName))
	}
	if data.ProjectGoal != "" {
		lines = append(lines, fmt.Sprintf("🎯 <b>Цель:</b> %s", clip(data.ProjectGoal, 200)))
	}
	if data.ProjectType != "" {
		lines = append(lines, fmt.Sprintf("📁 <b>Тип проекта:</b> %s", data.ProjectType))
	}
	if data.Platform != "" {
		lines = append(lines, fmt.Sprintf("💻 <b>Платформа:</b> %s", data.Platform))
	}
	if data.TargetAudience != "" {
		lines = append(lines, fmt.Sprintf("👥 <b>Аудитория:</b> %s", data.TargetAudience))
	}

	if len(data.MustHaveFeatures) > 0 {
		lines = append(lines, "\n✅ <b>Обязательные функции:</b>")
		for i, f := range data.MustHaveFeatures {
			if i == 5 {
				lines = append(lines, fmt.Sprintf("  <i>...и ещё %d</i>", len(data.MustHaveFeatures)-5))
				break
			}
			lines = append(lines, "  • "+f)
		}
	}

	if len(data.Integrations) > 0 {
		lines = append(lines, "\n🔗 <b>Интеграции:</b> "+strings.Join(data.Integrations, ", "))
	}
	if len(data.References) > 0 {
		lines = append(lines, "\n🔍 <b>Референсы:</b> "+strings.Join(data.References, ", "))
	}
	if data.Deadline != "" {
		lines = append(lines, "\n⏰ <b>Сроки:</b> "+data.Deadline)
	}
	if data.BudgetRange != "" {
		lines = append(lines, "💰 <b>Бюджет:</b> "+data.BudgetRange)
	}
	if len(data.Deliverables) > 0 {
		lines = append(lines, "\n📦 <b>Результаты:</b>")
		for _, d := range data.Deliverables {
			lines = append(lines, "  • "+d)
		}
	}

	if len(lines) <= 1 {
		return "📋 Пока нет собранной информации.\n\nНачни с /new"
	}

	lines = append(lines, "\n━━━━━━━━━━━━━━━━━━")
	lines = append(lines, fmt.Sprintf("📊 <b>Заполнено:</b> %d%%", data.CompletionPercent()))

	if missing := data.MissingRequired(); len(missing) > 0 {
		lines = append(lines, "\n⚠️ <b>Не хватает для генерации:</b>")
		for _, field := range missing {
			lines = append(lines, "  • "+field.Label())
		}
	} else {
		lines = append(lines, "\n✅ <b>Можно генерировать бриф!</b>")
	}

	return strings.Join(lines, "\n")
}

// MissingFields asks the user to fill the listed fields.
func MissingFields(missing []entity.FieldID) string {
	var lines []string
	lines = append(lines, "⚠️ <b>Для генерации не хватает:</b>\n")
	for _, field := range missing {
		lines = append(lines, "  • "+field.Label())
	}
	lines = append(lines, "\nВыбери, что заполнить:")
	return strings.Join(lines, "\n")
}

// FieldPrompt asks for a specific field in free text.
func FieldPrompt(field entity.FieldID) string {
	prompts := map[entity.FieldID]string{
		entity.FieldProjectGoal:      "🎯 <b>Опиши цель проекта:</b>\n\nЧто должно получиться в результате?\nКакую задачу решает проект?",
		entity.FieldMustHaveFeatures: "✅ <b>Опиши основной функционал:</b>\n\nЧто обязательно должно быть?\nПеречисли функции списком.",
		entity.FieldDeliverables:     "📦 <b>Что должно быть на выходе:</b>\n\nКакие материалы/результаты ты ожидаешь?\n(код, дизайн, документация, ...)",
		entity.FieldTargetAudience:   "👥 <b>Опиши целевую аудиторию:</b>\n\nКто будет пользоваться проектом?",
	}
	if prompt, ok := prompts[field]; ok {
		return prompt
	}
	return fmt.Sprintf("📝 Укажи: <b>%s</b>", field.Label())
}

// Transcribed prefixes the reply with the recognized text.
func Transcribed(text string) string {
	return fmt.Sprintf("🎤 <i>Распознано:</i> %s", clip(text, 500))
}

// DocumentReady is the caption of the generated file.
func DocumentReady(data *entity.BriefData) string {
	name := data.ProjectName
	if name == "" {
		name = data.ProjectType
	}
	return fmt.Sprintf(
		"✅ <b>Бриф готов!</b>\n\n📋 <b>Проект:</b> %s\n🎯 <b>Цель:</b> %s",
		name,
		clip(data.ProjectGoal, 100),
	)
}

// SplitMessage breaks a long reply into Telegram-sized parts along
// paragraph boundaries, then sentences.
func SplitMessage(text string, maxLength int) []string {
	if len(text) <= maxLength {
		return []string{text}
	}

	var parts []string
	current := ""

	for _, paragraph := range strings.Split(text, "\n\n") {
		if len(current)+len(paragraph)+2 <= maxLength {
			if current != "" {
				current += "\n\n"
			}
			current += paragraph
			continue
		}

		if current != "" {
			parts = append(parts, current)
		}

		if len(paragraph) > maxLength {
			current = ""
			for _, sentence := range strings.Split(strings.ReplaceAll(paragraph, ". ", ".|"), "|") {
				if len(current)+len(sentence)+1 <= maxLength {
					current += sentence
				} else {
					if current != "" {
						parts = append(parts, current)
					}
					current = sentence
				}
			}
		} else {
			current = paragraph
		}
	}

	if current != "" {
		parts = append(parts, current)
	}
	return parts
}

func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
