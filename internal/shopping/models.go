package shopping

import "time"

// ShoppingList is the set of missing ingredients for an accepted meal plan.
// Items are normalised ingredient names handed to the pricing engine.
type ShoppingList struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	MealPlanID string    `json:"meal_plan_id"`
	Items      []string  `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}
