package statement

import (
	"fmt"
	"io"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/sodcapital/reconcile/internal/model"
)

// OFXParser parses OFX/QFX bank statement exports.
type OFXParser struct{}

// Format returns the parser name.
func (p *OFXParser) Format() string { return "ofx" }

// Parse reads an OFX export and returns a normalized Statement.
// Returns ErrEmptyStatement (with the statement header) when the
// transaction list is empty.
func (p *OFXParser) Parse(r io.Reader) (*model.Statement, error) {
	resp, err := ofxgo.ParseResponse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(resp.Bank) == 0 {
		return nil, fmt.Errorf("%w: no bank statement block", ErrMalformed)
	}
	bankStmt, ok := resp.Bank[0].(*ofxgo.StatementResponse)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected bank message type %T", ErrMalformed, resp.Bank[0])
	}

	account := bankStmt.BankAcctFrom.AcctID.String()
	if account == "" {
		return nil, fmt.Errorf("%w: missing account identifier", ErrMalformed)
	}

	bank := resp.Signon.Org.String()
	if bank == "" {
		bank = bankStmt.BankAcctFrom.BankID.String()
	}

	if bankStmt.BankTranList == nil {
		return nil, fmt.Errorf("%w: missing transaction list", ErrMalformed)
	}

	stmt := &model.Statement{
		Bank:           bank,
		Account:        account,
		PeriodStart:    dateOnly(bankStmt.BankTranList.DtStart.Time),
		PeriodEnd:      dateOnly(bankStmt.BankTranList.DtEnd.Time),
		ClosingBalance: decimal.NewFromBigRat(&bankStmt.BalAmt.Rat, 2),
	}

	for i, txn := range bankStmt.BankTranList.Transactions {
		t, err := extractTransaction(txn, account)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		stmt.Transactions = append(stmt.Transactions, t)
	}

	if len(stmt.Transactions) == 0 {
		return stmt, ErrEmptyStatement
	}
	return stmt, nil
}

// extractTransaction converts one OFX transaction to the normalized form.
func extractTransaction(txn ofxgo.Transaction, account string) (model.StatementTransaction, error) {
	externalID := txn.FiTID.String()
	if externalID == "" {
		return model.StatementTransaction{}, fmt.Errorf("%w: missing FITID", ErrMalformed)
	}

	// Posted date, falling back to the user-initiated date.
	posted := txn.DtPosted.Time
	if posted.IsZero() {
		posted = txn.DtUser.Time
	}
	if posted.IsZero() {
		return model.StatementTransaction{}, fmt.Errorf("%w: transaction %s has no date", ErrMalformed, externalID)
	}

	memo := strings.TrimSpace(txn.Name.String())
	if memo == "" {
		memo = strings.TrimSpace(txn.Memo.String())
	}

	return model.StatementTransaction{
		Account:    account,
		ExternalID: externalID,
		PostedOn:   dateOnly(posted),
		Amount:     decimal.NewFromBigRat(&txn.TrnAmt.Rat, 2),
		Memo:       memo,
		Reference:  txn.CheckNum.String(),
	}, nil
}
