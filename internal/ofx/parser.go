// Package ofx parses OFX/QFX statements exported by banks into importable
// transaction rows.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/adriaviles2711/finanzaApp/internal/importer"
	"github.com/adriaviles2711/finanzaApp/internal/model"
)

// Parser reads OFX/QFX statement files.
type Parser struct{}

// NewParser creates an OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocess fixes the formatting quirks real bank exports ship with.
func (p *Parser) preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case (INFO, WARN, ERROR) but some banks
	// emit mixed case.
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style exports sometimes drop the closing angle bracket on a
	// tag that ends a line.
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Parse reads an OFX/QFX file and returns normalized rows: debits become
// expenses, credits become income, amounts are absolute values.
func (p *Parser) Parse(r io.Reader) ([]importer.ParsedTransaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var rows []importer.ParsedTransaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			rows = append(rows, p.statementRows(stmt.BankTranList)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			rows = append(rows, p.statementRows(stmt.BankTranList)...)
		}
	}

	slog.Info("parsed OFX file",
		"transactions", len(rows),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return rows, nil
}

func (p *Parser) statementRows(list *ofxgo.TransactionList) []importer.ParsedTransaction {
	if list == nil {
		return nil
	}
	rows := make([]importer.ParsedTransaction, 0, len(list.Transactions))
	for _, ofxTxn := range list.Transactions {
		rows = append(rows, p.convert(ofxTxn))
	}
	return rows
}

func (p *Parser) convert(ofxTxn ofxgo.Transaction) importer.ParsedTransaction {
	// OFX amounts are negative for debits.
	amount := decimal.NewFromBigRat(&ofxTxn.TrnAmt.Rat, 2)
	recordType := model.TypeIncome
	if amount.IsNegative() {
		recordType = model.TypeExpense
	}

	return importer.ParsedTransaction{
		Date:        model.DateOf(ofxTxn.DtPosted.Time),
		Amount:      amount.Abs(),
		Type:        recordType,
		Description: p.description(ofxTxn),
	}
}

// description picks the cleanest merchant label the statement offers.
func (p *Parser) description(txn ofxgo.Transaction) string {
	if txn.Payee != nil && txn.Payee.Name != "" {
		return strings.TrimSpace(string(txn.Payee.Name))
	}

	name := string(txn.Name)
	if txn.Memo != "" && isGenericDescription(name) {
		name = string(txn.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date stamps.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
