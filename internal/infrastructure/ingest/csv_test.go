package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudwatch/internal/domain/model"
	"github.com/bibbank/fraudwatch/internal/domain/service"
	"github.com/bibbank/fraudwatch/internal/infrastructure/ingest"
	"github.com/bibbank/fraudwatch/pkg/testutil"
)

const paysimSample = `step,type,amount,nameOrig,oldbalanceOrg,newbalanceOrig,nameDest,oldbalanceDest,newbalanceDest,isFraud,isFlaggedFraud
1,PAYMENT,9839.64,C1231006815,170136.0,160296.36,M1979787155,0.0,0.0,0,0
1,TRANSFER,181.0,C1305486145,181.0,0.0,C553264065,0.0,0.0,1,0
1,CASH_OUT,181.0,C840083671,181.0,0.0,C38997010,21182.0,0.0,1,0
`

func TestReadCSV_PaySim(t *testing.T) {
	rows, err := ingest.ReadCSV(strings.NewReader(paysimSample))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	recs := model.NormalizeAll(rows)
	assert.Equal(t, int64(1), recs[0].Step)
	assert.Equal(t, model.TypePayment, recs[0].Type)
	assert.Equal(t, 9839.64, recs[0].Amount)
	assert.Equal(t, "C1231006815", recs[0].NameOrig)
	assert.Equal(t, 170136.0, recs[0].OldBalanceOrig)
	assert.Equal(t, model.TypeTransfer, recs[1].Type)
	assert.Equal(t, 21182.0, recs[2].OldBalanceDest)
}

func TestReadCSV_ColumnOrderAndMissingOptional(t *testing.T) {
	input := "amount,type,newbalanceOrig,step,oldbalanceOrg\n150000,TRANSFER,50000,3,200000\n"

	rows, err := ingest.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec := rows[0].Normalize()
	assert.Equal(t, int64(3), rec.Step)
	assert.Equal(t, 150000.0, rec.Amount)
	assert.Equal(t, 0.0, rec.NewBalanceDest)
	assert.Nil(t, rows[0].NewBalanceDest)
	assert.Empty(t, rec.NameDest)
}

func TestReadCSV_UnparsableCellsAreAbsent(t *testing.T) {
	input := "step,type,amount,oldbalanceOrg,newbalanceOrig\n2.0,CASH_OUT,abc,,100\n"

	rows, err := ingest.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Nil(t, rows[0].Amount)
	assert.Nil(t, rows[0].OldBalanceOrig)
	require.NotNil(t, rows[0].Step)
	assert.Equal(t, int64(2), *rows[0].Step)
	assert.Equal(t, 100.0, *rows[0].NewBalanceOrig)
}

func TestReadCSV_NonFiniteCellsAreAbsent(t *testing.T) {
	input := "step,type,amount,oldbalanceOrg,newbalanceOrig,newbalanceDest\n" +
		"1,TRANSFER,NaN,0,0,0\n" +
		"inf,CASH_OUT,inf,-Infinity,+Inf,1e400\n"

	rows, err := ingest.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Nil(t, rows[0].Amount)
	assert.Nil(t, rows[1].Step)
	assert.Nil(t, rows[1].Amount)
	assert.Nil(t, rows[1].OldBalanceOrig)
	assert.Nil(t, rows[1].NewBalanceOrig)
	assert.Nil(t, rows[1].NewBalanceDest)

	rec := rows[0].Normalize()
	assert.Equal(t, 0.0, rec.Amount)
	verdict, err := service.NewRuleScorer().Score(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, verdict.Flagged, "a NaN amount must not trip the balance rule")
}

func TestReadCSV_MissingRequiredColumns(t *testing.T) {
	_, err := ingest.ReadCSV(strings.NewReader("step,type,amount\n1,PAYMENT,10\n"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingColumns))
	ve := testutil.RequireValidationError(t, err, "oldbalanceOrg", "newbalanceOrig")
	assert.Equal(t, []string{"oldbalanceOrg", "newbalanceOrig"}, ve.Missing)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ingest.ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, model.ErrMissingColumns)

	rows, err := ingest.ReadCSV(strings.NewReader("step,type,amount,oldbalanceOrg,newbalanceOrig\n"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestReadCSV_ShortRowsAndBOM(t *testing.T) {
	input := "\ufeffstep,type,amount,oldbalanceOrg,newbalanceOrig,newbalanceDest\n4,TRANSFER,10\n"

	rows, err := ingest.ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), *rows[0].Step)
	assert.Nil(t, rows[0].NewBalanceOrig)
}
