package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleStaff = "staff"
	UserRoleAdmin = "admin"
)

const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeDelivery = "delivery"
)

// ── Group B: Configurable labels (no DB constraint) ──

// ToppingCategoryGeneral marks toppings that apply to every menu category.
const ToppingCategoryGeneral = "General"

// CategoryAll is the menu filter value meaning "no category filter".
const CategoryAll = "All"
