package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleLibrarian Role = "librarian"
	RoleAdmin     Role = "admin"
)

type CopyStatus string

const (
	CopyAvailable CopyStatus = "available"
	CopyBorrowed  CopyStatus = "borrowed"
	CopyRemoved   CopyStatus = "removed"
)

type Account struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Credits      int64     `db:"credits" json:"credits"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Title struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Author      string    `db:"author" json:"author"`
	ISBN        string    `db:"isbn" json:"isbn"`
	Publisher   string    `db:"publisher" json:"publisher"`
	Description string    `db:"description" json:"description"`
	Price       int64     `db:"price" json:"price"`
	CostPerDay  int64     `db:"cost_per_day" json:"cost_per_day"`
	CategoryID  *string   `db:"category_id" json:"category_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type Copy struct {
	ID         string     `db:"id" json:"id"`
	TitleID    string     `db:"title_id" json:"title_id"`
	Status     CopyStatus `db:"status" json:"status"`
	HolderID   *string    `db:"holder_id" json:"holder_id,omitempty"`
	BorrowedAt *time.Time `db:"borrowed_at" json:"borrowed_at,omitempty"`
	DueAt      *time.Time `db:"due_at" json:"due_at,omitempty"`
}

type LoanRecord struct {
	ID         string     `db:"id" json:"id"`
	AccountID  string     `db:"account_id" json:"account_id"`
	CopyID     string     `db:"copy_id" json:"copy_id"`
	BorrowedAt time.Time  `db:"borrowed_at" json:"borrowed_at"`
	ReturnedAt *time.Time `db:"returned_at" json:"returned_at,omitempty"`
}

type PurchaseRecord struct {
	ID          string    `db:"id" json:"id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	TitleName   string    `db:"title_name" json:"title_name"`
	TitleAuthor string    `db:"title_author" json:"title_author"`
	PricePaid   int64     `db:"price_paid" json:"price_paid"`
	PurchasedAt time.Time `db:"purchased_at" json:"purchased_at"`
}

type Rating struct {
	ID        string    `db:"id" json:"id"`
	AccountID string    `db:"account_id" json:"account_id"`
	TitleID   string    `db:"title_id" json:"title_id"`
	Score     int       `db:"score" json:"score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Comment struct {
	ID        string    `db:"id" json:"id"`
	AccountID string    `db:"account_id" json:"account_id"`
	Username  string    `db:"username" json:"username"`
	TitleID   string    `db:"title_id" json:"title_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
