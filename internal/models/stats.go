package models

// Stats сводные показатели для админской панели.
// Revenue считается только по оплаченным заказам, в основных единицах валюты.
type Stats struct {
	TotalUsers        int     `json:"total_users"`
	TotalOrders       int     `json:"total_orders"`
	PaidOrders        int     `json:"paid_orders"`
	TotalRevenue      float64 `json:"total_revenue"`
	ActiveAccounts    int     `json:"active_accounts"`
	CompletedAccounts int     `json:"completed_accounts"`
}
