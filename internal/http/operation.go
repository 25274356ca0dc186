package httpapi

// Operation value of the "operation" request parameter
type Operation string

const (
	OpGetDashboardData Operation = "getDashboardData"

	OpGetCategories  Operation = "getCategories"
	OpCreateCategory Operation = "createCategory"
	OpUpdateCategory Operation = "updateCategory"
	OpDeleteCategory Operation = "deleteCategory"

	OpViewHouses  Operation = "viewHouses"
	OpAddHouse    Operation = "addHouse"
	OpUpdateHouse Operation = "updateHouse"
	OpDeleteHouse Operation = "deleteHouse"

	OpViewTenants  Operation = "viewTenants"
	OpAddTenant    Operation = "addTenant"
	OpUpdateTenant Operation = "updateTenant"
	OpDeleteTenant Operation = "deleteTenant"

	OpViewPayments  Operation = "viewPayments"
	OpAddPayment    Operation = "addPayment"
	OpUpdatePayment Operation = "updatePayment"
	OpDeletePayment Operation = "deletePayment"

	OpLogin Operation = "login"
)

// Operations every recognised operation, in documentation order.
var Operations = []Operation{
	OpGetDashboardData,
	OpGetCategories, OpCreateCategory, OpUpdateCategory, OpDeleteCategory,
	OpViewHouses, OpAddHouse, OpUpdateHouse, OpDeleteHouse,
	OpViewTenants, OpAddTenant, OpUpdateTenant, OpDeleteTenant,
	OpViewPayments, OpAddPayment, OpUpdatePayment, OpDeletePayment,
	OpLogin,
}

// AcceptsImage reports whether the operation reads the "image" multipart part.
func (o Operation) AcceptsImage() bool {
	return o == OpAddHouse || o == OpUpdateHouse
}
