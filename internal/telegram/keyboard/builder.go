package keyboard

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ashabalin/brief-refiner/internal/entity"
)

// Builder creates inline keyboards
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// MainMenuKeyboard is shown on /start.
func (b *Builder) MainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚀 Новый бриф", "action:new"),
			tgbotapi.NewInlineKeyboardButtonData("❓ Помощь", "action:help"),
		),
	)
}

// ProjectTypeKeyboard offers the common project types.
func (b *Builder) ProjectTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌐 Лендинг", "type:лендинг"),
			tgbotapi.NewInlineKeyboardButtonData("🏢 Корп. сайт", "type:корпоративный сайт"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Интернет-магазин", "type:интернет-магазин"),
			tgbotapi.NewInlineKeyboardButtonData("📱 Приложение", "type:мобильное приложение"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 Telegram-бот", "type:telegram-бот"),
			tgbotapi.NewInlineKeyboardButtonData("🔧 Другое", "type:другое"),
		),
	)
}

// PlatformKeyboard offers the target platforms.
func (b *Builder) PlatformKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌐 Web", "platform:web"),
			tgbotapi.NewInlineKeyboardButtonData("📱 iOS", "platform:ios"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🤖 Android", "platform:android"),
			tgbotapi.NewInlineKeyboardButtonData("📲 Web + Mobile", "platform:web + mobile"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💬 Telegram", "platform:telegram"),
		),
	)
}

// DeadlineKeyboard offers rough delivery windows.
func (b *Builder) DeadlineKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚡ До 1 недели", "deadline:до 1 недели"),
			tgbotapi.NewInlineKeyboardButtonData("📅 2-4 недели", "deadline:2-4 недели"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📆 1-3 месяца", "deadline:1-3 месяца"),
			tgbotapi.NewInlineKeyboardButtonData("🗓 3+ месяца", "deadline:3+ месяца"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Пока не знаю", "deadline:пока не определены"),
		),
	)
}

// BudgetKeyboard offers budget brackets.
func (b *Builder) BudgetKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💵 Минимальный", "budget:минимальный"),
			tgbotapi.NewInlineKeyboardButtonData("💰 Средний", "budget:средний"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💎 Большой", "budget:большой"),
			tgbotapi.NewInlineKeyboardButtonData("🤷 Гибкий", "budget:гибкий"),
		),
	)
}

// MissingFieldsKeyboard lets the user pick which empty field to fill next.
func (b *Builder) MissingFieldsKeyboard(missing []entity.FieldID) tgbotapi.InlineKeyboardMarkup {
	icons := map[entity.FieldID]string{
		entity.FieldProjectGoal:      "🎯",
		entity.FieldProjectType:      "📁",
		entity.FieldPlatform:         "💻",
		entity.FieldDeadline:         "⏰",
		entity.FieldBudgetRange:      "💰",
		entity.FieldDeliverables:     "📦",
		entity.FieldMustHaveFeatures: "✅",
		entity.FieldTargetAudience:   "👥",
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(missing))
	for _, field := range missing {
		icon, ok := icons[field]
		if !ok {
			icon = "📝"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				icon+" "+field.Label(),
				EncodeCallback("fill", string(field)),
			),
		))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// SummaryActionsKeyboard follows each model reply during a session.
func (b *Builder) SummaryActionsKeyboard(isReady bool) tgbotapi.InlineKeyboardMarkup {
	if isReady {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📄 Сгенерировать бриф", "action:final"),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📝 Добавить детали", "action:continue"),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", "action:cancel"),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Что собрано", "action:summary"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить бриф", "action:cancel"),
		),
	)
}

// FormatKeyboard selects the document format for /final.
func (b *Builder) FormatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 DOCX", "format:docx"),
			tgbotapi.NewInlineKeyboardButtonData("📕 PDF", "format:pdf"),
			tgbotapi.NewInlineKeyboardButtonData("📝 Markdown", "format:markdown"),
		),
	)
}
