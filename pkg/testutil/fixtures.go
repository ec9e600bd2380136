package testutil

import "github.com/bibbank/fraudwatch/internal/domain/model"

// PaySim-shaped rows with known rule outcomes.
var (
	// LegitPayment scores 0.
	LegitPayment = model.TransactionRecord{
		Step: 1, Type: model.TypePayment, Amount: 2500,
		NameOrig: "C1231006815", OldBalanceOrig: 10000, NewBalanceOrig: 7500,
		NameDest: "M1979787155", OldBalanceDest: 0, NewBalanceDest: 2500,
	}

	// DrainingTransfer scores 65: large transfer plus empty destination.
	DrainingTransfer = model.TransactionRecord{
		Step: 1, Type: model.TypeTransfer, Amount: 150000,
		NameOrig: "C1305486145", OldBalanceOrig: 200000, NewBalanceOrig: 50000,
		NameDest: "C553264065", OldBalanceDest: 0, NewBalanceDest: 0,
	}

	// MismatchedCashOut scores 65: large cash-out plus balance mismatch.
	MismatchedCashOut = model.TransactionRecord{
		Step: 2, Type: model.TypeCashOut, Amount: 60000,
		NameOrig: "C840083671", OldBalanceOrig: 0, NewBalanceOrig: 0,
		NameDest: "C38997010", OldBalanceDest: 21182, NewBalanceDest: 81182,
	}
)
