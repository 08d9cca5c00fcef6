package document

import (
	"fmt"
	"strings"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

type section struct {
	title  string
	scalar string
	list   []string
}

// RenderBody lays the collected brief out as plain structured text.
// Empty fields are omitted entirely.
func RenderBody(data *entity.BriefData) string {
	sections := []section{
		{title: "Название проекта", scalar: data.ProjectName},
		{title: "Цель проекта", scalar: data.ProjectGoal},
		{title: "Целевая аудитория", scalar: data.TargetAudience},
		{title: "Тип проекта", scalar: data.ProjectType},
		{title: "Платформа", scalar: data.Platform},
		{title: "Основной функционал", list: data.MustHaveFeatures},
		{title: "Желательные функции", list: data.NiceToHaveFeatures},
		{title: "Интеграции", list: data.Integrations},
		{title: "Референсы", list: data.References},
		{title: "Готовность контента", scalar: data.ContentReady},
		{title: "Сроки", scalar: data.Deadline},
		{title: "Бюджет", scalar: data.BudgetRange},
		{title: "Ограничения", list: data.Constraints},
		{title: "Ожидаемые результаты", list: data.Deliverables},
		{title: "Критерии приёмки", list: data.AcceptanceCriteria},
		{title: "Кто принимает решения", scalar: data.Stakeholders},
		{title: "Формат связи", scalar: data.CommunicationFormat},
		{title: "Риски", list: data.Risks},
		{title: "Открытые вопросы", list: data.OpenQuestions},
	}

	var b strings.Builder
	for _, s := range sections {
		if s.scalar == "" && len(s.list) == 0 {
			continue
		}

		fmt.Fprintf(&b, "%s\n", s.title)
		if s.scalar != "" {
			fmt.Fprintf(&b, "%s\n", s.scalar)
		}
		for _, item := range s.list {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}

	if data.LLMAnalysis != "" {
		fmt.Fprintf(&b, "Комментарий ассистента\n%s\n", data.LLMAnalysis)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
