package feed

// Kind identifies a feed card variant.
type Kind int

const (
	KindRecipe Kind = iota + 1
	KindVendor
	KindTip
	KindDrink
	KindLifecycleGuide
	KindWeeklyPlanner
	KindPhotoGallery
	KindGroupShare
	KindDNAMilestone
	KindExpiryAlert
)

var kindNames = map[Kind]string{
	KindRecipe:         "recipe",
	KindVendor:         "vendor",
	KindTip:            "tip",
	KindDrink:          "drink",
	KindLifecycleGuide: "lifecycle_guide",
	KindWeeklyPlanner:  "weekly_planner",
	KindPhotoGallery:   "photo_gallery",
	KindGroupShare:     "group_share",
	KindDNAMilestone:   "dna_milestone",
	KindExpiryAlert:    "expiry_alert",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Card is a single feed entry. The set of implementations is closed to this package.
type Card interface {
	Kind() Kind
	// Key uniquely identifies the card within a feed.
	Key() string
	isCard()
}

// RecipeCard is the only card variant that carries a score.
type RecipeCard struct {
	RecipeID string  `json:"recipe_id"`
	Title    string  `json:"title"`
	Cuisine  string  `json:"cuisine"`
	Minutes  int     `json:"minutes"`
	Score    float64 `json:"score"`
}

type VendorCard struct {
	ID       string `json:"id"`
	Vendor   string `json:"vendor"`
	Headline string `json:"headline"`
}

type TipCard struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type DrinkCard struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Pairing string `json:"pairing,omitempty"`
}

// LifecycleGuideCard explains what the app is doing at the user's current stage.
type LifecycleGuideCard struct {
	Stage string `json:"stage"`
}

// PreviewSlot is one pre-populated day of a WeeklyPlannerCard.
type PreviewSlot struct {
	DayOfWeek int    `json:"day_of_week"`
	RecipeID  string `json:"recipe_id"`
	Title     string `json:"title"`
}

type WeeklyPlannerCard struct {
	Preview []PreviewSlot `json:"preview"`
}

type PhotoGalleryCard struct {
	ID string `json:"id"`
}

type GroupShareCard struct {
	ID        string `json:"id"`
	GroupName string `json:"group_name"`
	RecipeID  string `json:"recipe_id,omitempty"`
}

type DNAMilestoneCard struct {
	Milestone  string  `json:"milestone"`
	Confidence float64 `json:"confidence"`
}

type ExpiryAlertCard struct {
	Items []string `json:"items"`
}

func (RecipeCard) Kind() Kind         { return KindRecipe }
func (VendorCard) Kind() Kind         { return KindVendor }
func (TipCard) Kind() Kind            { return KindTip }
func (DrinkCard) Kind() Kind          { return KindDrink }
func (LifecycleGuideCard) Kind() Kind { return KindLifecycleGuide }
func (WeeklyPlannerCard) Kind() Kind  { return KindWeeklyPlanner }
func (PhotoGalleryCard) Kind() Kind   { return KindPhotoGallery }
func (GroupShareCard) Kind() Kind     { return KindGroupShare }
func (DNAMilestoneCard) Kind() Kind   { return KindDNAMilestone }
func (ExpiryAlertCard) Kind() Kind    { return KindExpiryAlert }

func (c RecipeCard) Key() string         { return "recipe:" + c.RecipeID }
func (c VendorCard) Key() string         { return "vendor:" + c.ID }
func (c TipCard) Key() string            { return "tip:" + c.ID }
func (c DrinkCard) Key() string          { return "drink:" + c.ID }
func (c LifecycleGuideCard) Key() string { return "lifecycle_guide:" + c.Stage }
func (WeeklyPlannerCard) Key() string    { return "weekly_planner" }
func (c PhotoGalleryCard) Key() string   { return "photo_gallery:" + c.ID }
func (c GroupShareCard) Key() string     { return "group_share:" + c.ID }
func (c DNAMilestoneCard) Key() string   { return "dna_milestone:" + c.Milestone }
func (ExpiryAlertCard) Key() string      { return "expiry_alert" }

func (RecipeCard) isCard()         {}
func (VendorCard) isCard()         {}
func (TipCard) isCard()            {}
func (DrinkCard) isCard()          {}
func (LifecycleGuideCard) isCard() {}
func (WeeklyPlannerCard) isCard()  {}
func (PhotoGalleryCard) isCard()   {}
func (GroupShareCard) isCard()     {}
func (DNAMilestoneCard) isCard()   {}
func (ExpiryAlertCard) isCard()    {}

// Dismiss returns a new feed without the card identified by key. The input is not modified.
func Dismiss(cards []Card, key string) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		if c.Key() != key {
			out = append(out, c)
		}
	}
	return out
}

// CountKind returns how many cards of kind k the feed contains.
func CountKind(cards []Card, k Kind) int {
	n := 0
	for _, c := range cards {
		if c.Kind() == k {
			n++
		}
	}
	return n
}
