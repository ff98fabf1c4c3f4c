package telegram

import (
	"fmt"
	"strings"
	"time"

	"cookdna/internal/app"
	"cookdna/internal/feed"
	"cookdna/internal/personality"
	"cookdna/internal/planner"
	"cookdna/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const feedPreviewCards = 10

const archetypeUsage = "Send `/start <archetype>` with one of: thrill_seeker, weekend_warrior, weekday_hero, batch_planner."

const helpText = `🍳 *Commands*

/feed - recipes picked for you right now
/plan [day=mode ...] - propose next week's plan, e.g. /plan wed=skip sat=go_nuts
/swap <day> - change one day of the proposal
/accept - lock the plan in and get the shopping list
/cooked <recipe-id> <minutes> [rating] - log a cook`

var archetypeTitles = map[personality.Archetype]string{
	personality.ThrillSeeker:   "Thrill Seeker",
	personality.WeekendWarrior: "Weekend Warrior",
	personality.WeekdayHero:    "Weekday Hero",
	personality.BatchPlanner:   "Batch Planner",
}

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatProfile(p personality.Profile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧬 *Your cooking DNA:* %s\n", archetypeTitles[p.Primary])
	fmt.Fprintf(&sb, "Confidence: %.0f%%\n", p.Confidence*100)
	if p.Hybrid != nil {
		fmt.Fprintf(&sb, "Weekdays you cook like a %s, weekends like a %s.\n",
			archetypeTitles[p.Hybrid.WeekdayArchetype], archetypeTitles[p.Hybrid.WeekendArchetype])
	}
	return sb.String()
}

func formatFeed(cards []feed.Card, limit int) string {
	if len(cards) == 0 {
		return "🍽 Nothing to show yet. Check back after the next catalogue sync."
	}
	var sb strings.Builder
	sb.WriteString("🍽 *Your Feed*\n\n")
	for i, c := range cards {
		if i == limit {
			fmt.Fprintf(&sb, "_…and %d more_\n", len(cards)-limit)
			break
		}
		sb.WriteString(formatCard(c))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatCard(c feed.Card) string {
	switch c := c.(type) {
	case feed.RecipeCard:
		line := fmt.Sprintf("• *%s*", esc(c.Title))
		if c.Cuisine != "" {
			line += " · " + esc(c.Cuisine)
		}
		if c.Minutes > 0 {
			line += fmt.Sprintf(" · %d min", c.Minutes)
		}
		return line + fmt.Sprintf(" `%s`", c.RecipeID)
	case feed.VendorCard:
		return fmt.Sprintf("🛍 %s: %s", esc(c.Vendor), esc(c.Headline))
	case feed.TipCard:
		return "💡 " + esc(c.Text)
	case feed.DrinkCard:
		if c.Pairing != "" {
			return fmt.Sprintf("🍷 %s, pairs with %s", esc(c.Name), esc(c.Pairing))
		}
		return "🍷 " + esc(c.Name)
	case feed.LifecycleGuideCard:
		return "🧭 Guide: " + esc(c.Stage)
	case feed.WeeklyPlannerCard:
		return fmt.Sprintf("🗓 Plan preview ready for %d days. Send /plan", len(c.Preview))
	case feed.PhotoGalleryCard:
		return "📸 Community cook photos"
	case feed.GroupShareCard:
		return "👥 Shared in " + esc(c.GroupName)
	case feed.DNAMilestoneCard:
		return fmt.Sprintf("🏅 Milestone: %s (%.0f%%)", esc(c.Milestone), c.Confidence*100)
	case feed.ExpiryAlertCard:
		return "⏳ Use soon: " + esc(strings.Join(c.Items, ", "))
	}
	return ""
}

func formatPlan(p planner.WeeklyPlanProposal) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *Weekly Plan* (week of %s)\n\n", p.WeekStart.Format("2006-01-02"))
	for _, d := range p.Days {
		fmt.Fprintf(&sb, "*%s*: ", time.Weekday(d.DayOfWeek))
		switch {
		case d.Mode == planner.ModeSkip:
			sb.WriteString("_eating out_")
		case d.Assigned():
			sb.WriteString(esc(d.RecipeTitle))
			if d.Minutes > 0 {
				fmt.Fprintf(&sb, " (%d min)", d.Minutes)
			}
		case d.LeftoverSourceTitle != "":
			sb.WriteString("leftovers from " + esc(d.LeftoverSourceTitle))
		default:
			sb.WriteString("_nothing fits_")
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n💰 About $%.2f for %d serves\n", p.EstimatedCost, p.Servings)
	sb.WriteString("\n/swap <day> to change a day, /accept to lock it in.")
	return sb.String()
}

func formatShoppingList(list *shopping.ShoppingList) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(list.Items) == 0 {
		sb.WriteString("_Your pantry has it covered._\n")
	}
	for _, item := range list.Items {
		fmt.Fprintf(&sb, "• %s\n", esc(item))
	}
	return sb.String()
}

func formatCookResult(res app.CookResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👩‍🍳 Logged! Confidence is now %.0f%%.\n", res.Profile.Confidence*100)
	for _, ms := range res.Milestones {
		fmt.Fprintf(&sb, "🏅 Milestone unlocked: *%s*\n", esc(ms.Name))
	}
	if res.Drift != nil {
		fmt.Fprintf(&sb, "🔄 Lately you cook like a *%s*.\n", archetypeTitles[*res.Drift])
	}
	return sb.String()
}
