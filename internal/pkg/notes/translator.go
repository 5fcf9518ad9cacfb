package notes

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/light-bringer/tariff-billing/internal/app/billing/domain"
)

const dateLayout = "2006-01-02"

// Message keys.
const (
	keyPeriod = "Services for the period %s - %s: %s"
	keyRooms  = "rooms x%d"
	keyOther  = "additional service"
)

var translations = map[language.Tag]map[string]string{
	language.German: {
		keyPeriod: "Leistungen für den Zeitraum %s - %s: %s",
		keyRooms:  "Zimmer x%d",
		keyOther:  "Zusatzleistung",
	},
	language.Russian: {
		keyPeriod: "Услуги за период %s - %s: %s",
		keyRooms:  "номера x%d",
		keyOther:  "дополнительная услуга",
	},
}

// Translator renders order notes from a message catalog. Unknown
// languages fall back to English.
type Translator struct {
	catalog *catalog.Builder
	matcher language.Matcher
	tags    []language.Tag
}

// NewTranslator builds the catalog.
func NewTranslator() (*Translator, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, key := range []string{keyPeriod, keyRooms, keyOther} {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, err
		}
	}
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}

	tags := b.Languages()
	return &Translator{
		catalog: b,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

func (t *Translator) printer(lang string) *message.Printer {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		_, idx, conf := t.matcher.Match(parsed)
		if conf != language.No {
			tag = t.tags[idx]
		}
	}
	return message.NewPrinter(tag, message.Catalog(t.catalog))
}

// OrderNote describes the enabled members of order and their billing
// window in lang.
func (t *Translator) OrderNote(lang string, order *domain.Order, members []*domain.ClientService) string {
	p := t.printer(lang)

	var begin, end time.Time
	items := make([]string, 0, len(members))
	for _, cs := range members {
		if !cs.IsEnabled() || !order.Contains(cs.ID()) {
			continue
		}
		if begin.IsZero() || cs.Begin().Before(begin) {
			begin = cs.Begin()
		}
		if cs.End().After(end) {
			end = cs.End()
		}
		if cs.ServiceType().IsUnitBased() {
			items = append(items, p.Sprintf(keyRooms, cs.Quantity()))
		} else {
			items = append(items, p.Sprintf(keyOther))
		}
	}

	return p.Sprintf(keyPeriod, begin.Format(dateLayout), end.Format(dateLayout), strings.Join(items, ", "))
}
