package main

import (
	"github.com/shopspring/decimal"
)

// setBalance forces the school funds balance to the given amount. This is an
// operator escape hatch; regular debits go through the finance service.
func (cli *commandLine) setBalance(amount string) error {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	_, err = cli.db.Exec(`UPDATE school_finances SET balance = $1, updated_at = now() WHERE id = 1`, amt)
	return err
}
