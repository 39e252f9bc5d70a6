package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/worksdev/portal/internal/secrets"
)

type User struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	Role     int    `json:"role"`
	Active   bool   `json:"active"`
}

type Secret struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	Key       string `json:"key"`
	Content   string `json:"content"`
	IV        string `json:"iv"`
	UpdatedAt string `json:"updated_at"`
}

// Payload returns the encrypted part of the secret.
func (s Secret) Payload() *secrets.EncryptedPayload {
	return &secrets.EncryptedPayload{Key: s.Key, Content: s.Content, IV: s.IV}
}

type NewSecret struct {
	Label string `json:"label"`
	secrets.EncryptedPayload
	// ReceiverID addresses the secret to another user. Empty means the
	// caller's own account.
	ReceiverID string `json:"receiver_id,omitempty"`
}

type SecretCreated struct {
	ID        int64  `json:"id"`
	UpdatedAt string `json:"updated_at"`
}

// Complement is the contract complement; every field is encrypted for the
// admin key.
type Complement struct {
	LegalName secrets.EncryptedPayload `json:"legal_name"`
	RFC       secrets.EncryptedPayload `json:"rfc"`
	Fullname  secrets.EncryptedPayload `json:"fullname"`
	Address   secrets.EncryptedPayload `json:"address"`
	Role      secrets.EncryptedPayload `json:"role"`
}

type OrderUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        int             `json:"type"`
	Cost        decimal.Decimal `json:"cost"`
}

type Discount struct {
	Description string          `json:"description"`
	Percentage  decimal.Decimal `json:"percentage"`
}

type Order struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Tag                 string    `json:"tag"`
	Status              int       `json:"status"`
	PaymentInstallments int       `json:"payment_installments"`
	DurationWeeks       int       `json:"duration_weeks"`
	IsRecurring         bool      `json:"is_recurring"`
	PortfolioConsent    bool      `json:"portfolio_consent"`
	User                OrderUser `json:"user"`
	Items               []Item    `json:"items"`
	Discount            *Discount `json:"discount,omitempty"`
}

// ItemCosts returns the cost of every item.
func (o *Order) ItemCosts() []decimal.Decimal {
	costs := make([]decimal.Decimal, len(o.Items))
	for i, item := range o.Items {
		costs[i] = item.Cost
	}
	return costs
}

// DiscountPercentage returns the order discount, or zero.
func (o *Order) DiscountPercentage() decimal.Decimal {
	if o.Discount == nil {
		return decimal.Zero
	}
	return o.Discount.Percentage
}

type DiscountRequest struct {
	Description string      `json:"description"`
	Percentage  json.Number `json:"percentage"`
	Disposable  bool        `json:"disposable"`
}

type StatusRequest struct {
	Status int `json:"status"`
}

type MessageUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Message struct {
	Content   string      `json:"content"`
	User      MessageUser `json:"user"`
	CreatedAt time.Time   `json:"createdAt"`
}

type Thread struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Type     int       `json:"type"`
	Status   int       `json:"status"`
	Messages []Message `json:"messages"`
}

var orderStatuses = []string{
	"Desconocido",
	"En planificación",
	"Pago requerido",
	"En desarrollo",
	"En producción",
	"En mantenimiento",
	"Revisión del cliente",
	"En espera",
	"Archivado",
	"Cancelado",
	"Completado",
}

// OrderStatusName returns the display name of an order status.
func OrderStatusName(status int) string {
	if status <= 0 || status >= len(orderStatuses) {
		return orderStatuses[0]
	}
	return orderStatuses[status]
}

var threadStatuses = []string{"Desconocido", "Abierto", "Archivado", "Cerrado"}

// ThreadStatusName returns the display name of a thread status.
func ThreadStatusName(status int) string {
	if status <= 0 || status >= len(threadStatuses) {
		return threadStatuses[0]
	}
	return threadStatuses[status]
}
