package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is one persisted transaction record. All monetary columns are
// in the row's display currency.
type LedgerRow struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	UserID string `gorm:"type:varchar(100);not null;index:idx_ledger_scope,priority:1"`
	Ticker string `gorm:"type:varchar(50);not null;index:idx_ledger_scope,priority:2"`
	Person string `gorm:"type:varchar(100);not null;index:idx_ledger_scope,priority:3"`

	On       time.Time `gorm:"type:date;not null;index"`
	Category string    `gorm:"type:varchar(10);not null"`
	Currency string    `gorm:"type:varchar(3);not null"`

	SharesCount    decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	PricePerShare  decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	EffectivePrice decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	TotalOutlay    decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`
	Fees           decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	Taxes          decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`

	AvgPrice    decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	EffAvgPrice decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	FIFOAvgDate *time.Time      `gorm:"column:fifo_avg_date;type:date"`

	TransactionID int64 `gorm:"not null;index"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (LedgerRow) TableName() string {
	return "ledger_rows"
}

// QuoteRow is one cached market data point for a symbol.
type QuoteRow struct {
	ID     uint64    `gorm:"primaryKey;autoIncrement"`
	Symbol string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_quote,priority:1"`
	On     time.Time `gorm:"type:date;not null;uniqueIndex:uq_quote,priority:2"`

	Close    decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`
	Dividend decimal.Decimal `gorm:"type:numeric(20,10);not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (QuoteRow) TableName() string {
	return "quote_rows"
}

// UserPreference holds per-user settings.
type UserPreference struct {
	UserID          string `gorm:"type:varchar(100);primaryKey"`
	DisplayCurrency string `gorm:"type:varchar(3);not null;default:''"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}

// Security maps a ticker to its trading currency.
type Security struct {
	Ticker   string `gorm:"type:varchar(50);primaryKey"`
	Currency string `gorm:"type:varchar(3);not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Security) TableName() string {
	return "securities"
}

// TransactionSequence allocates per-user monotonically increasing
// transaction ids.
type TransactionSequence struct {
	UserID string `gorm:"type:varchar(100);primaryKey"`
	Last   int64  `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (TransactionSequence) TableName() string {
	return "transaction_sequences"
}
