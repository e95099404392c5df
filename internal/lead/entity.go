// AngelaMos | 2026
// entity.go

package lead

import (
	"time"
)

type Subscriber struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}

// CalculatorLead is someone who downloaded the cost calculator.
type CalculatorLead struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Phone       *string   `db:"phone"`
	ProjectType *string   `db:"project_type"`
	BudgetRange *string   `db:"budget_range"`
	CreatedAt   time.Time `db:"created_at"`
}
