package chat

import (
	"fmt"
	"strings"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

const systemPrompt = `Ты — AI-ассистент, который помогает превратить размытый запрос клиента в структурированный бриф проекта.

Твоя задача:
1. Задавать уточняющие вопросы, когда информации не хватает.
2. Помогать формулировать цели, функционал и ограничения проекта.
3. Отвечать коротко и по делу, на русском языке.
4. Не придумывать факты за клиента.

Если клиент спрашивает справочную информацию про составление брифов и ТЗ, отвечай по сути вопроса.`

const analysisSystemPrompt = "Ты — эксперт по анализу проектов. Выявляй риски и открытые вопросы."

const imagePrompt = `Опиши, что изображено на картинке, применительно к проекту клиента.
Если это макет, скриншот или референс — перечисли, какие элементы интерфейса или стиля стоит учесть в брифе.`

// buildSystemPrompt layers knowledge-base context and the current brief
// state on top of the base instruction.
func buildSystemPrompt(knowledgeContext string, data *entity.BriefData) string {
	prompt := systemPrompt

	if knowledgeContext != "" {
		prompt += "\n\nКОНТЕКСТ ИЗ БАЗЫ ЗНАНИЙ:\n" + knowledgeContext
	}

	if data != nil {
		prompt += fmt.Sprintf(`

Текущие данные брифа:
- Цель: %s
- Тип: %s
- Платформа: %s
- Функции: %s

Если пользователь предоставляет новую информацию — помоги её структурировать.
Если чего-то не хватает — задай 1-2 уточняющих вопроса.`,
			orUnset(data.ProjectGoal, "не указана"),
			orUnset(data.ProjectType, "не указан"),
			orUnset(data.Platform, "не указана"),
			orUnset(strings.Join(data.MustHaveFeatures, ", "), "не указаны"),
		)
	}

	return prompt
}

// buildAnalysisPrompt asks the model for risks and open questions over
// everything collected so far.
func buildAnalysisPrompt(data *entity.BriefData) string {
	rawText := strings.Join(data.RawMessages, "\n")
	if len([]rune(rawText)) > 2000 {
		rawText = string([]rune(rawText)[:2000])
	}

	return fmt.Sprintf(`Проанализируй собранную информацию о проекте и сформируй:
1. Список возможных рисков (red flags) — что может пойти не так
2. Список открытых вопросов — что нужно уточнить перед началом работ

Информация о проекте:
- Цель: %s
- Тип: %s
- Платформа: %s
- Аудитория: %s
- Бюджет: %s
- Сроки: %s
- Функции: %s

Дополнительный контекст из диалога:
%s

Ответь в формате:
РИСКИ:
- риск 1
- риск 2

ВОПРОСЫ:
- вопрос 1
- вопрос 2

Если рисков/вопросов нет — напиши "нет".`,
		data.ProjectGoal,
		data.ProjectType,
		data.Platform,
		orUnset(data.TargetAudience, "не указана"),
		orUnset(data.BudgetRange, "не указан"),
		orUnset(data.Deadline, "не указаны"),
		orUnset(strings.Join(data.MustHaveFeatures, ", "), "не указаны"),
		orUnset(rawText, "нет"),
	)
}

func orUnset(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
