package profiles

import (
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUserIDNotFound means the profile page carried no numeric user id.
// The answer is definitive for this page: retrying the identical fetch
// returns the same document.
var ErrUserIDNotFound = errors.New("user id not found in profile page")

var (
	whoValueRe   = regexp.MustCompile(`id="who"[^>]*value="(\d+)"`)
	valueWhoRe   = regexp.MustCompile(`value="(\d+)"[^>]*id="who"`)
	leadDigitsRe = regexp.MustCompile(`\d+`)
	ratingRe     = regexp.MustCompile(`^(.*?)\s*\((\d+)\)\s*$`)
)

// Parser turns a profile page into a Profile. The page contract:
// numeric id in input#who, counters in #entry-count-total,
// #user-follower-count, #user-following-count, rating text in #user-karma
// ("yazar (123)"), account age in years in #user-age.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(body io.Reader, username string) (*Profile, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		Username:  username,
		FetchedAt: time.Now(),
	}

	profile.UserID = findUserID(doc, raw)
	if profile.UserID == "" {
		return nil, ErrUserIDNotFound
	}

	profile.EntryCount = parseCount(doc.Find("#entry-count-total").First().Text())
	profile.Followers = parseCount(doc.Find("#user-follower-count").First().Text())
	profile.Following = parseCount(doc.Find("#user-following-count").First().Text())
	profile.AgeYears = leadingInt(doc.Find("#user-age").First().Text())

	profile.Rating = strings.TrimSpace(doc.Find("#user-karma").First().Text())
	profile.Level, profile.RatingPoints = splitRating(profile.Rating)

	return profile, nil
}

func findUserID(doc *goquery.Document, raw []byte) string {
	if value, ok := doc.Find("input#who").Attr("value"); ok {
		if id := strings.TrimSpace(value); isDigits(id) {
			return id
		}
	}

	// Attribute order is not guaranteed when falling back to raw markup.
	if m := whoValueRe.FindSubmatch(raw); m != nil {
		return string(m[1])
	}
	if m := valueWhoRe.FindSubmatch(raw); m != nil {
		return string(m[1])
	}

	return ""
}

// splitRating separates "anarşist (245)" into the level name and points.
// A rating without points keeps the whole string as the level.
func splitRating(rating string) (level string, points int) {
	if rating == "" {
		return "", 0
	}

	if m := ratingRe.FindStringSubmatch(rating); m != nil {
		points, _ = strconv.Atoi(m[2])
		return strings.TrimSpace(m[1]), points
	}

	return rating, 0
}

// parseCount reads the forum's abbreviated counters: "5.437" (dotted
// thousands), "1,5b" (bin = thousand) and plain integers.
func parseCount(text string) int {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return 0
	}

	mult := 1.0
	if strings.HasSuffix(t, "b") {
		mult = 1000
		t = strings.TrimSuffix(t, "b")
	}

	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", ".")

	value, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
	if err != nil {
		return 0
	}

	return int(value * mult)
}

func leadingInt(text string) int {
	m := leadDigitsRe.FindString(text)
	if m == "" {
		return 0
	}
	value, _ := strconv.Atoi(m)
	return value
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
