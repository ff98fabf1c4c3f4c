package recipe

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PostData is the raw post handed over by the content source.
type PostData struct {
	ID        string
	Title     string
	UpdatedAt string
	HTML      string
}

// ErrNoIngredients is returned when a post has no recognisable ingredient list.
var ErrNoIngredients = errors.New("no ingredients found")

var (
	hoursPattern  = regexp.MustCompile(`(\d+)\s*(?:hours|hour|hrs|hr|h)\b`)
	minsPattern   = regexp.MustCompile(`(\d+)\s*(?:minutes|minute|mins|min|m)\b`)
	numberPattern = regexp.MustCompile(`\d+`)
)

// ParsePost extracts a Recipe from a post's HTML.
//
// Metadata is read from data attributes on a `.recipe` element
// (data-cuisine, data-total-time, data-adventure, data-spice,
// data-cost-per-serve, data-seasons). Ingredients come from `ul.ingredients li`
// (data-staple, data-qty, data-unit) and steps from `ol.steps li`; when those
// classes are missing the lists following an "Ingredients" or "Method" heading
// are used instead. The result is tagged with Tag.
func ParsePost(post PostData) (Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(post.HTML))
	if err != nil {
		return Recipe{}, fmt.Errorf("failed to parse post HTML: %w", err)
	}

	rec := Recipe{
		ID:        post.ID,
		Title:     post.Title,
		UpdatedAt: post.UpdatedAt,
	}

	meta := doc.Find(".recipe").First()
	rec.Cuisine = strings.ToLower(strings.TrimSpace(meta.AttrOr("data-cuisine", "")))
	rec.TotalTimeMinutes = parseMinutes(meta.AttrOr("data-total-time", ""))
	if rec.TotalTimeMinutes == 0 {
		rec.TotalTimeMinutes = parseMinutes(doc.Find(".total-time").First().Text())
	}
	rec.AdventureLevel = clamp(atoi(meta.AttrOr("data-adventure", "1")), 1, 4)
	rec.SpiceLevel = clamp(atoi(meta.AttrOr("data-spice", "0")), 0, 4)
	rec.CostPerServe, _ = strconv.ParseFloat(meta.AttrOr("data-cost-per-serve", "0"), 64)
	for _, season := range strings.Split(meta.AttrOr("data-seasons", ""), ",") {
		if s := strings.ToLower(strings.TrimSpace(season)); s != "" {
			rec.SeasonTags = append(rec.SeasonTags, s)
		}
	}

	ingredients := doc.Find("ul.ingredients li")
	if ingredients.Length() == 0 {
		ingredients = listAfterHeading(doc, "ingredient", "ul")
	}
	ingredients.Each(func(_ int, li *goquery.Selection) {
		name := strings.TrimSpace(li.Text())
		if name == "" {
			return
		}
		qty, _ := strconv.ParseFloat(li.AttrOr("data-qty", "0"), 64)
		rec.Ingredients = append(rec.Ingredients, Ingredient{
			Name:     name,
			Quantity: qty,
			Unit:     li.AttrOr("data-unit", ""),
			Staple:   li.AttrOr("data-staple", "false") == "true",
		})
	})
	if len(rec.Ingredients) == 0 {
		return Recipe{}, fmt.Errorf("post %s: %w", post.ID, ErrNoIngredients)
	}

	steps := doc.Find("ol.steps li")
	if steps.Length() == 0 {
		steps = listAfterHeading(doc, "method", "ol")
	}
	steps.Each(func(_ int, li *goquery.Selection) {
		if text := strings.TrimSpace(li.Text()); text != "" {
			rec.Steps = append(rec.Steps, text)
		}
	})

	doc.Find("ul.leftovers li").Each(func(_ int, li *goquery.Selection) {
		if text := strings.TrimSpace(li.Text()); text != "" {
			rec.LeftoverIdeas = append(rec.LeftoverIdeas, text)
		}
	})

	rec.Personality = Tag(rec)
	return rec, nil
}

// listAfterHeading returns the items of the first list that follows a heading
// containing keyword.
func listAfterHeading(doc *goquery.Document, keyword, list string) *goquery.Selection {
	items := doc.Selection.Slice(0, 0)
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !strings.Contains(strings.ToLower(h.Text()), keyword) {
			return true
		}
		items = h.NextAllFiltered(list).First().Find("li")
		return false
	})
	return items
}

func parseMinutes(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	total := 0
	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		total += atoi(m[1]) * 60
	}
	if m := minsPattern.FindStringSubmatch(s); m != nil {
		total += atoi(m[1])
	}
	if total == 0 {
		if m := numberPattern.FindString(s); m != "" {
			total = atoi(m)
		}
	}
	return total
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
