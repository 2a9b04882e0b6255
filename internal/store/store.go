// Package store persists the ledger, quote cache, user preferences and
// security metadata behind the engine's storage interfaces.
package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlarrea/folio"
	"github.com/mlarrea/folio/date"
	"github.com/mlarrea/folio/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ folio.LedgerStore = (*Store)(nil)
var _ folio.PriceStore = (*Store)(nil)
var _ folio.PreferenceStore = (*Store)(nil)
var _ folio.SecurityStore = (*Store)(nil)

// --- LedgerStore ------------------------------------------------------------

func (s *Store) Records(ctx context.Context, filter folio.RecordFilter) ([]folio.Record, error) {
	query := s.db.WithContext(ctx).Model(&models.LedgerRow{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if len(filter.Tickers) > 0 {
		query = query.Where("ticker IN ?", filter.Tickers)
	}
	if len(filter.People) > 0 {
		query = query.Where("person IN ?", filter.People)
	}
	if !filter.Until.IsZero() {
		query = query.Where("\"on\" <= ?", toDay(filter.Until))
	}
	if filter.TransactionID != 0 {
		query = query.Where("transaction_id = ?", filter.TransactionID)
	}

	var rows []models.LedgerRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]folio.Record, len(rows))
	for i, row := range rows {
		records[i] = fromRow(row)
	}
	return records, nil
}

func (s *Store) ReplaceScope(ctx context.Context, userID, ticker, person string, records []folio.Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("user_id = ? AND ticker = ? AND person = ?", userID, ticker, person).
			Delete(&models.LedgerRow{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]models.LedgerRow, len(records))
		for i, r := range records {
			rows[i] = toRow(r)
		}
		return tx.Create(&rows).Error
	})
}

func (s *Store) NextTransactionID(ctx context.Context, userID string) (int64, error) {
	var next int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq models.TransactionSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = models.TransactionSequence{UserID: userID}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		seq.Last++
		next = seq.Last
		return tx.Model(&models.TransactionSequence{}).
			Where("user_id = ?", userID).
			Update("last", seq.Last).Error
	})
	return next, err
}

func (s *Store) Tickers(ctx context.Context) ([]string, error) {
	var tickers []string
	err := s.db.WithContext(ctx).
		Model(&models.LedgerRow{}).
		Distinct("ticker").
		Order("ticker asc").
		Pluck("ticker", &tickers).Error
	return tickers, err
}

// --- PriceStore -------------------------------------------------------------

func (s *Store) SaveQuotes(ctx context.Context, quotes []folio.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	rows := make([]models.QuoteRow, len(quotes))
	for i, q := range quotes {
		rows[i] = models.QuoteRow{
			Symbol:   q.Symbol,
			On:       toDay(q.On),
			Close:    q.Close,
			Dividend: q.Dividend,
		}
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "on"}},
		DoUpdates: clause.AssignmentColumns([]string{"close", "dividend", "updated_at"}),
	}).Create(&rows).Error
}

func (s *Store) LatestQuoteDate(ctx context.Context, symbol string) (date.Date, bool, error) {
	var row models.QuoteRow
	err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("\"on\" desc").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return date.Date{}, false, nil
	}
	if err != nil {
		return date.Date{}, false, err
	}
	return fromDay(row.On), true, nil
}

func (s *Store) Quotes(ctx context.Context, symbols []string, r date.Range) ([]folio.Quote, error) {
	query := s.db.WithContext(ctx).Model(&models.QuoteRow{})
	if len(symbols) > 0 {
		query = query.Where("symbol IN ?", symbols)
	}
	if !r.From.IsZero() {
		query = query.Where("\"on\" >= ?", toDay(r.From))
	}
	if !r.To.IsZero() {
		query = query.Where("\"on\" <= ?", toDay(r.To))
	}

	var rows []models.QuoteRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	quotes := make([]folio.Quote, len(rows))
	for i, row := range rows {
		quotes[i] = folio.Quote{
			Symbol:   row.Symbol,
			On:       fromDay(row.On),
			Close:    row.Close,
			Dividend: row.Dividend,
		}
	}
	return quotes, nil
}

// --- PreferenceStore --------------------------------------------------------

func (s *Store) DisplayCurrency(ctx context.Context, userID string) (string, error) {
	var pref models.UserPreference
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return pref.DisplayCurrency, nil
}

// SetDisplayCurrency stores or replaces the user's preferred currency.
func (s *Store) SetDisplayCurrency(ctx context.Context, userID, currency string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_currency", "updated_at"}),
	}).Create(&models.UserPreference{UserID: userID, DisplayCurrency: currency}).Error
}

// --- SecurityStore ----------------------------------------------------------

func (s *Store) AssetCurrency(ctx context.Context, ticker string) (string, error) {
	var sec models.Security
	err := s.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		First(&sec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sec.Currency, nil
}

// UpsertSecurity stores or replaces a ticker's trading currency.
func (s *Store) UpsertSecurity(ctx context.Context, ticker, currency string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ticker"}},
		DoUpdates: clause.AssignmentColumns([]string{"currency", "updated_at"}),
	}).Create(&models.Security{Ticker: folio.NormalizeTicker(ticker), Currency: currency}).Error
}

// --- conversions ------------------------------------------------------------

func toDay(d date.Date) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func fromDay(t time.Time) date.Date {
	return date.New(t.UTC().Date())
}

func toRow(r folio.Record) models.LedgerRow {
	row := models.LedgerRow{
		UserID:         r.UserID,
		Ticker:         r.Ticker,
		Person:         r.Person,
		On:             toDay(r.On),
		Category:       string(r.Category),
		Currency:       r.PricePerShare.Currency(),
		SharesCount:    r.SharesCount.Decimal(),
		PricePerShare:  r.PricePerShare.Decimal(),
		EffectivePrice: r.EffectivePrice.Decimal(),
		TotalOutlay:    r.TotalOutlay.Decimal(),
		Fees:           r.Fees.Decimal(),
		Taxes:          r.Taxes.Decimal(),
		AvgPrice:       r.AvgPrice.Decimal(),
		EffAvgPrice:    r.EffAvgPrice.Decimal(),
		TransactionID:  r.TransactionID,
	}
	if row.Currency == "" {
		row.Currency = r.TotalOutlay.Currency()
	}
	if r.FIFOAvgDate != nil {
		t := toDay(*r.FIFOAvgDate)
		row.FIFOAvgDate = &t
	}
	return row
}

func fromRow(row models.LedgerRow) folio.Record {
	r := folio.Record{
		ID:             int64(row.ID),
		UserID:         row.UserID,
		Ticker:         row.Ticker,
		Person:         row.Person,
		On:             fromDay(row.On),
		Category:       folio.Category(row.Category),
		SharesCount:    folio.Q(row.SharesCount),
		PricePerShare:  folio.M(row.PricePerShare, row.Currency),
		EffectivePrice: folio.M(row.EffectivePrice, row.Currency),
		TotalOutlay:    folio.M(row.TotalOutlay, row.Currency),
		Fees:           folio.M(row.Fees, row.Currency),
		Taxes:          folio.M(row.Taxes, row.Currency),
		AvgPrice:       folio.M(row.AvgPrice, row.Currency),
		EffAvgPrice:    folio.M(row.EffAvgPrice, row.Currency),
		TransactionID:  row.TransactionID,
	}
	if row.FIFOAvgDate != nil {
		d := fromDay(*row.FIFOAvgDate)
		r.FIFOAvgDate = &d
	}
	return r
}
