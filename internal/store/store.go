// ABOUTME: Store interface and data types for famcoin-gateway persistence
// ABOUTME: Defines User, Child, Task, Reward, Message structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that is already taken
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateCode is returned when a generated pairing code collides
var ErrDuplicateCode = errors.New("pairing code already exists")

// ErrInsufficientCoins is returned when a coin deduction would go negative
var ErrInsufficientCoins = errors.New("insufficient coins")

// ErrDuplicateTitle is returned when a challenge title is already taken
var ErrDuplicateTitle = errors.New("title already exists")

// User represents a parent account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Child represents a child profile owned by a parent
type Child struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId"`
	Name      string    `json:"name"`
	Age       int       `json:"age,omitempty"`
	Gender    string    `json:"gender,omitempty"` // male, female, other
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Code      string    `json:"code"` // 6-character unique pairing code
	Coins     int64     `json:"coins"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category groups tasks (e.g. "Homework", "Household")
type Category struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parentId"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task status constants
const (
	TaskStatusPending   = "pending"   // assigned, not yet done
	TaskStatusSubmitted = "submitted" // child reported completion, awaiting approval
	TaskStatusApproved  = "approved"  // parent verified, coins awarded
	TaskStatusRejected  = "rejected"  // parent rejected the completion
)

// Task frequency constants
const (
	TaskFrequencyDaily  = "daily"
	TaskFrequencyWeekly = "weekly"
	TaskFrequencyOnce   = "once"
)

// Task represents a chore assigned to a child
type Task struct {
	ID               string     `json:"id"`
	ParentID         string     `json:"parentId"`
	ChildID          string     `json:"childId"`
	CategoryID       string     `json:"categoryId,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Frequency        string     `json:"frequency"`  // daily, weekly, once
	Difficulty       string     `json:"difficulty"` // easy, medium, hard
	CoinValue        int64      `json:"coinValue"`
	RequiresApproval bool       `json:"requiresApproval"`
	Status           string     `json:"status"`
	DueTime          *time.Time `json:"dueTime,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Reward types
const (
	RewardTypeBadge   = "badge"
	RewardTypeVoucher = "voucher"
	RewardTypeCustom  = "custom"
)

// Reward represents something a child can redeem coins for
type Reward struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parentId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Cost        int64     `json:"cost"`
	Type        string    `json:"type"` // badge, voucher, custom
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Reward claim status constants
const (
	ClaimStatusPending   = "pending"
	ClaimStatusFulfilled = "fulfilled"
	ClaimStatusDeclined  = "declined"
)

// RewardClaim records a child redeeming a reward. Cost is captured at claim
// time so later reward edits don't change history.
type RewardClaim struct {
	ID        string    `json:"id"`
	RewardID  string    `json:"rewardId"`
	ChildID   string    `json:"childId"`
	Cost      int64     `json:"cost"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Challenge is a site-wide activity families can take part in. Titles are
// unique; image is a plain URL string.
type Challenge struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Categories    []string  `json:"categories"`
	DaysRemaining int       `json:"daysRemaining"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Sender role constants for messages
const (
	SenderRoleParent = "parent"
	SenderRoleChild  = "child"
)

// Message represents a single chat message within a parent-child conversation
type Message struct {
	ID         string    `json:"id"`
	ParentID   string    `json:"parentId"`
	ChildID    string    `json:"childId"`
	SenderID   string    `json:"senderId"`
	SenderRole string    `json:"senderRole"` // parent, child
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store defines the interface for famcoin-gateway persistence
type Store interface {
	// Ping verifies the backing database is reachable
	Ping(ctx context.Context) error

	// Users (parent accounts)
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Children
	CreateChild(ctx context.Context, child *Child) error
	GetChild(ctx context.Context, id string) (*Child, error)
	GetChildByCode(ctx context.Context, code string) (*Child, error)
	ListChildren(ctx context.Context, parentID string) ([]*Child, error)
	UpdateChild(ctx context.Context, child *Child) error
	DeleteChild(ctx context.Context, id string) error
	AdjustChildCoins(ctx context.Context, childID string, delta int64) (*Child, error)

	// Categories
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context, parentID string) ([]*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Tasks
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasksByParent(ctx context.Context, parentID string) ([]*Task, error)
	ListTasksByChild(ctx context.Context, childID string) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id string) error

	// Rewards
	CreateReward(ctx context.Context, reward *Reward) error
	GetReward(ctx context.Context, id string) (*Reward, error)
	ListRewards(ctx context.Context, parentID string, activeOnly bool) ([]*Reward, error)
	UpdateReward(ctx context.Context, reward *Reward) error
	DeleteReward(ctx context.Context, id string) error

	// Challenges
	CreateChallenge(ctx context.Context, challenge *Challenge) error
	ListChallenges(ctx context.Context) ([]*Challenge, error)

	// Reward claims
	CreateRewardClaim(ctx context.Context, claim *RewardClaim) error
	GetRewardClaim(ctx context.Context, id string) (*RewardClaim, error)
	ListRewardClaimsByChild(ctx context.Context, childID string) ([]*RewardClaim, error)
	ListRewardClaimsByParent(ctx context.Context, parentID string) ([]*RewardClaim, error)
	UpdateRewardClaimStatus(ctx context.Context, id, status string) (*RewardClaim, error)

	// Messages (conversation history)
	InsertMessage(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id string) (*Message, error)
	MarkMessageRead(ctx context.Context, id string) (*Message, error)
	ListConversationMessages(ctx context.Context, parentID, childID string, limit int) ([]*Message, error)
	CountConversationMessages(ctx context.Context, parentID, childID string) (int, error)

	// Close releases any resources held by the store
	Close() error
}
