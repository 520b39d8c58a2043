package models

// All lists every model in dependency order, for AutoMigrate in tests and
// sqlite dev databases.
func All() []any {
	return []any{
		&EggType{},
		&PriceTierEntry{},
		&WholesaleCustomer{},
		&CustomerPriceOverride{},
		&Sale{},
		&SaleItem{},
		&IntakeLog{},
		&IntakeLogItem{},
		&ExpenseCategory{},
		&Expense{},
	}
}
