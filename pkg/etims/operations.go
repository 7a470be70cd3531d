package etims

import "context"

// Code and notice lookups

// SelectCodeList fetches the standard code tables changed since lastReqDt
func (c *Client) SelectCodeList(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectCodeList", payload)
}

// SelectNoticeList fetches notices published since lastReqDt
func (c *Client) SelectNoticeList(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectNoticeList", payload)
}

// Customers and branches

// SelectCustomer looks up a customer by custmTin
func (c *Client) SelectCustomer(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectCustomer", payload)
}

// SelectBranches lists the branches registered under the tenant TIN
func (c *Client) SelectBranches(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectBhfList", payload)
}

// SaveBranchCustomer registers or updates a branch customer
func (c *Client) SaveBranchCustomer(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "saveBhfCustomer", payload)
}

// SaveBranchUser registers or updates a branch user account
func (c *Client) SaveBranchUser(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "saveBhfUser", payload)
}

// SaveBranchInsurance registers or updates a branch insurer
func (c *Client) SaveBranchInsurance(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "saveBhfInsurance", payload)
}

// Items

// SelectItemClasses fetches the item classification tree
func (c *Client) SelectItemClasses(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectItemClsList", payload)
}

// SelectItems lists the items registered for the branch
func (c *Client) SelectItems(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectItemList", payload)
}

// SaveItem registers or updates an item
func (c *Client) SaveItem(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "saveItem", payload)
}

// SaveItemComposition links a component item to a composite item
func (c *Client) SaveItemComposition(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "saveItemComposition", payload)
}

// Imports

// SelectImportItems lists customs import declarations
func (c *Client) SelectImportItems(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectImportItemList", payload)
}

// UpdateImportItem accepts or rejects an imported item
func (c *Client) UpdateImportItem(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "updateImportItem", payload)
}

// Sales and purchases

// SaveSale submits a sales transaction. Line totals, header aggregates and
// tax band sums are checked before the request is sent.
func (c *Client) SaveSale(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "saveTrnsSalesOsdc", payload)
}

// SelectPurchases lists sales made to the tenant by other taxpayers
func (c *Client) SelectPurchases(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectTrnsPurchaseSalesList", payload)
}

// SavePurchase records a purchase transaction
func (c *Client) SavePurchase(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "insertTrnsPurchase", payload)
}

// Stock

// SelectStockMovements lists stock movements between branches
func (c *Client) SelectStockMovements(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "selectStockMoveList", payload)
}

// SaveStockIO records a stock in or out movement
func (c *Client) SaveStockIO(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "insertStockIO", payload)
}

// SaveStockMaster sets the remaining quantity of an item
func (c *Client) SaveStockMaster(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Execute(ctx, "saveStockMaster", payload)
}
