package models

// ProductStatus is the moderation state controlling public visibility.
type ProductStatus string

const (
	ProductPending  ProductStatus = "pending"
	ProductApproved ProductStatus = "approved"
	ProductRejected ProductStatus = "rejected"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductPending, ProductApproved, ProductRejected:
		return true
	}
	return false
}

// OrderStatus is the fulfillment state driving the admin workflow.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderCompleted OrderStatus = "completed"
	OrderRejected  OrderStatus = "rejected"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderCompleted, OrderRejected:
		return true
	}
	return false
}

// Product mirrors the backend's product shape. Date fields stay raw strings:
// the gateway translates, it does not own the wire format.
type Product struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Price       float64       `json:"price"`
	ImageURL    string        `json:"image_url,omitempty"`
	Quantity    uint          `json:"quantity"`
	Status      ProductStatus `json:"status"`
	SellerID    uint          `json:"seller_id"`
	DatePosted  string        `json:"date_posted,omitempty"`
}

// CartItem carries the product snapshot the backend embeds; stock checks
// read Product.Quantity from this snapshot.
type CartItem struct {
	ID       uint    `json:"id"`
	Product  Product `json:"product"`
	Quantity uint    `json:"quantity"`
}

type Cart struct {
	ID    uint       `json:"id"`
	Items []CartItem `json:"items"`
}

// OrderItem records the price captured at order creation. PriceAtOrderTime
// is never recalculated from the live product price.
type OrderItem struct {
	ID               uint     `json:"id"`
	ProductID        uint     `json:"product_id"`
	Quantity         uint     `json:"quantity"`
	PriceAtOrderTime float64  `json:"price_at_order_time"`
	Product          *Product `json:"product,omitempty"`
}

type Order struct {
	ID           uint        `json:"id"`
	CustomerName string      `json:"customer_name"`
	Address      string      `json:"address"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email,omitempty"`
	Status       OrderStatus `json:"status"`
	DateCreated  string      `json:"date_created,omitempty"`
	Items        []OrderItem `json:"items"`
	TotalPrice   *float64    `json:"total_price,omitempty"`
}

// Total returns the backend-supplied total when present, otherwise the sum
// of stored order-time prices times quantities.
func (o Order) Total() float64 {
	if o.TotalPrice != nil {
		return *o.TotalPrice
	}
	var sum float64
	for _, it := range o.Items {
		sum += it.PriceAtOrderTime * float64(it.Quantity)
	}
	return sum
}

// User is the backend's snake_case user record from /auth/me.
type User struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	IsAdmin   bool   `json:"is_admin"`
}

// UserView is the camelCase shape the frontend contract expects.
type UserView struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (u User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

func (u User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		City:      u.City,
		Country:   u.Country,
		Phone:     u.Phone,
	}
}
