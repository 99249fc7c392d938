package notify

import (
	"github.com/bradykim7/menza/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	msgChannelName        = "food_status_channel_name"
	msgChannelDescription = "food_status_channel_description"
	msgTitle              = "notification_title"
	msgContent            = "notification_content"
	msgStatusServing      = "status_serving"
	msgStatusPreparing    = "status_preparing"
	msgStatusUnavailable  = "status_unavailable"
)

// supported lists the languages with translations, the first one is the fallback
var supported = []language.Tag{language.Croatian, language.English, language.German}

var translations = map[language.Tag]map[string]string{
	language.Croatian: {
		msgChannelName:        "Status jela",
		msgChannelDescription: "Obavijesti o promjeni statusa omiljenih jela",
		msgTitle:              "Promjena statusa omiljenog jela",
		msgContent:            "%[1]s (%[2]s): %[3]s",
		msgStatusServing:      "Poslužuje se",
		msgStatusPreparing:    "U pripremi",
		msgStatusUnavailable:  "Nije dostupno",
	},
	language.English: {
		msgChannelName:        "Food status",
		msgChannelDescription: "Notifications when a favorite food changes status",
		msgTitle:              "Favorite food update",
		msgContent:            "%[1]s at %[2]s is now %[3]s",
		msgStatusServing:      "serving",
		msgStatusPreparing:    "being prepared",
		msgStatusUnavailable:  "unavailable",
	},
	language.German: {
		msgChannelName:        "Speisestatus",
		msgChannelDescription: "Benachrichtigungen, wenn sich der Status einer Lieblingsspeise ändert",
		msgTitle:              "Neuigkeiten zu deiner Lieblingsspeise",
		msgContent:            "%[1]s in %[2]s: %[3]s",
		msgStatusServing:      "wird serviert",
		msgStatusPreparing:    "in Zubereitung",
		msgStatusUnavailable:  "nicht verfügbar",
	},
}

var (
	matcher  = language.NewMatcher(supported)
	messages = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(supported[0]))
	for tag, entries := range translations {
		for key, msg := range entries {
			if err := builder.SetString(tag, key, msg); err != nil {
				panic("notify: invalid translation " + key + ": " + err.Error())
			}
		}
	}
	return builder
}

// Localizer renders notification texts in one language
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer picks the best supported language for a BCP 47 code such as "en-GB"
func NewLocalizer(lang string) *Localizer {
	_, index, _ := matcher.Match(language.Make(lang))
	tag := supported[index]

	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messages)),
	}
}

// Lang returns the two-letter code of the chosen language
func (l *Localizer) Lang() string {
	base, _ := l.tag.Base()
	return base.String()
}

// StatusText returns the localized name of a status
func (l *Localizer) StatusText(status models.FoodStatus) string {
	switch status {
	case models.FoodStatusServing:
		return l.printer.Sprintf(msgStatusServing)
	case models.FoodStatusPreparing:
		return l.printer.Sprintf(msgStatusPreparing)
	case models.FoodStatusUnavailable:
		return l.printer.Sprintf(msgStatusUnavailable)
	}
	return string(status)
}

// Title returns the notification title
func (l *Localizer) Title() string {
	return l.printer.Sprintf(msgTitle)
}

// Body formats the notification body
func (l *Localizer) Body(foodName, restaurantName, statusText string) string {
	return l.printer.Sprintf(msgContent, foodName, restaurantName, statusText)
}

// Channel returns the localized food status channel
func (l *Localizer) Channel() Channel {
	return Channel{
		ID:          FoodStatusChannelID,
		Name:        l.printer.Sprintf(msgChannelName),
		Description: l.printer.Sprintf(msgChannelDescription),
	}
}
