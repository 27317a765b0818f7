package schema

// Models lists every table managed by the ledger, in migration order
func Models() []any {
	return []any{
		&Balance{},
		&Allowance{},
		&TokenState{},
		&SaleSettings{},
		&SaleWindow{},
		&WhitelistEntry{},
		&StakeRecord{},
		&LedgerEvent{},
	}
}
