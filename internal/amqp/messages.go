package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage asks the worker to export one transaction. It only
// carries the id; the worker reads the current row from the store.
type TransactionSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetAlertMessage reports a category that went over its monthly budget.
// Amounts are in cents.
type BudgetAlertMessage struct {
	Category     string    `json:"category"`
	Month        string    `json:"month"`
	BudgetCents  int64     `json:"budget"`
	SpentCents   int64     `json:"spent"`
	OverageCents int64     `json:"overage"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewBudgetAlertMessage(category, month string, budgetCents, spentCents int64) *BudgetAlertMessage {
	return &BudgetAlertMessage{
		Category:     category,
		Month:        month,
		BudgetCents:  budgetCents,
		SpentCents:   spentCents,
		OverageCents: spentCents - budgetCents,
		Timestamp:    time.Now().UTC(),
	}
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
