package session

import "fmt"

// Localization manages bot text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyGreeting           = "greeting"
	KeyAskLink            = "ask_link"
	KeyAskSupportedLink   = "ask_supported_link"
	KeyOnlySupported      = "only_supported"
	KeyChannelPrompt      = "channel_prompt"
	KeyChannelPromptPlain = "channel_prompt_plain"
	KeyChooseQuality      = "choose_quality"
	KeyInvalidRequest     = "invalid_request"
	KeyLinkExpired        = "link_expired"
	KeySelected           = "selected"
	KeyDownloading        = "downloading"
	KeyProgress           = "progress"
	KeyUnsupported        = "unsupported"
	KeyTooLarge           = "too_large"
	KeyTooLargeForChat    = "too_large_for_chat"
	KeyFetchFailed        = "fetch_failed"
	KeyUnexpected         = "unexpected"
	KeySendFailed         = "send_failed"
	KeyCaption            = "caption"
)

// DefaultLanguage is used when no or an unknown language is configured
const DefaultLanguage = "uz"

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: DefaultLanguage,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. Unknown languages are ignored.
func (l *Localization) SetLanguage(lang string) {
	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"uz": "O'zbekcha",
		"en": "English",
		"ru": "Русский",
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// Format returns localized text for key with args applied
func (l *Localization) Format(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// Uzbek texts
	l.texts["uz"] = map[string]string{
		KeyGreeting:           "👋 Assalomu alaykum! Menga YouTube yoki Instagram link yuboring",
		KeyAskLink:            "Linkni yuboring",
		KeyAskSupportedLink:   "Iltimos, YouTube yoki Instagram havolasini yuboring.",
		KeyOnlySupported:      "Faqat YouTube yoki Instagram havolasini yuboring.",
		KeyChannelPrompt:      "⛔️ Avval %s kanaliga a'zo bo'ling, so'ngra urinib ko'ring.",
		KeyChannelPromptPlain: "⛔️ Avval kanalga a'zo bo'ling, so'ngra urinib ko'ring.",
		KeyChooseQuality:      "Qaysi sifatda yuklaymiz?",
		KeyInvalidRequest:     "Noto'g'ri so'rov.",
		KeyLinkExpired:        "Link eskirgan. Qaytadan yuboring.",
		KeySelected:           "✅ Tanlandi: %s\nYuklab olinmoqda…",
		KeyDownloading:        "Yuklanmoqda…",
		KeyProgress:           "Yuklanmoqda: %.1f%%\n%s / %s",
		KeyUnsupported:        "Bu link qo'llab-quvvatlanmaydi. Faqat YouTube yoki Instagram.",
		KeyTooLarge:           "Fayl juda katta. %s limit. Tafsilot: %s",
		KeyTooLargeForChat:    "Fayl Telegram chegarasidan katta. Pastroq sifatni tanlang yoki boshqa video tanlang.",
		KeyFetchFailed:        "Yuklab olishda xatolik: %s",
		KeyUnexpected:         "Kutilmagan xatolik yuz berdi. Keyinroq urinib ko'ring.",
		KeySendFailed:         "Video jo'natishda xatolik. Keyinroq urinib ko'ring.",
		KeyCaption:            "✅ Yuklandi: %s\n🔗 %s",
	}

	// English texts
	l.texts["en"] = map[string]string{
		KeyGreeting:           "👋 Hi! Send me a YouTube or Instagram link",
		KeyAskLink:            "Send the link",
		KeyAskSupportedLink:   "Please send a YouTube or Instagram link.",
		KeyOnlySupported:      "Only YouTube or Instagram links are accepted.",
		KeyChannelPrompt:      "⛔️ Join %s first, then try again.",
		KeyChannelPromptPlain: "⛔️ Join the channel first, then try again.",
		KeyChooseQuality:      "Which quality should I download?",
		KeyInvalidRequest:     "Invalid request.",
		KeyLinkExpired:        "The link has expired. Send it again.",
		KeySelected:           "✅ Selected: %s\nDownloading…",
		KeyDownloading:        "Downloading…",
		KeyProgress:           "Downloading: %.1f%%\n%s / %s",
		KeyUnsupported:        "This link is not supported. Only YouTube or Instagram.",
		KeyTooLarge:           "The file is too large. Limit is %s. Details: %s",
		KeyTooLargeForChat:    "The file exceeds the Telegram limit. Choose a lower quality or another video.",
		KeyFetchFailed:        "Download error: %s",
		KeyUnexpected:         "An unexpected error occurred. Try again later.",
		KeySendFailed:         "Failed to send the video. Try again later.",
		KeyCaption:            "✅ Downloaded: %s\n🔗 %s",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyGreeting:           "👋 Привет! Пришлите ссылку на YouTube или Instagram",
		KeyAskLink:            "Пришлите ссылку",
		KeyAskSupportedLink:   "Пожалуйста, пришлите ссылку на YouTube или Instagram.",
		KeyOnlySupported:      "Принимаются только ссылки на YouTube или Instagram.",
		KeyChannelPrompt:      "⛔️ Сначала подпишитесь на %s, затем попробуйте снова.",
		KeyChannelPromptPlain: "⛔️ Сначала подпишитесь на канал, затем попробуйте снова.",
		KeyChooseQuality:      "В каком качестве скачать?",
		KeyInvalidRequest:     "Неверный запрос.",
		KeyLinkExpired:        "Ссылка устарела. Отправьте её снова.",
		KeySelected:           "✅ Выбрано: %s\nЗагрузка…",
		KeyDownloading:        "Загрузка…",
		KeyProgress:           "Загрузка: %.1f%%\n%s / %s",
		KeyUnsupported:        "Эта ссылка не поддерживается. Только YouTube или Instagram.",
		KeyTooLarge:           "Файл слишком большой. Лимит %s. Подробности: %s",
		KeyTooLargeForChat:    "Файл превышает лимит Telegram. Выберите качество ниже или другое видео.",
		KeyFetchFailed:        "Ошибка загрузки: %s",
		KeyUnexpected:         "Произошла непредвиденная ошибка. Попробуйте позже.",
		KeySendFailed:         "Не удалось отправить видео. Попробуйте позже.",
		KeyCaption:            "✅ Загружено: %s\n🔗 %s",
	}
}
