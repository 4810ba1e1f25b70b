package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPercent          = errors.New("discount percent must be between 0 and 100")
	ErrInvalidInstallmentCount = errors.New("installment count must be at least 1")
)

var hundred = decimal.NewFromInt(100)

// ApplyVIPDiscount returns the discounted price and the discount amount, both rounded half up to the dinar.
func ApplyVIPDiscount(price, percent int64) (total int64, discount int64, err error) {
	if percent < 0 || percent > 100 {
		return 0, 0, fmt.Errorf("%w: got %d", ErrInvalidPercent, percent)
	}
	if price <= 0 {
		return max(price, 0), 0, nil
	}

	priceDecimal := decimal.NewFromInt(price)
	discountDecimal := priceDecimal.Mul(decimal.NewFromInt(percent)).Div(hundred).Round(0)

	discount = discountDecimal.IntPart()
	total = priceDecimal.Sub(discountDecimal).IntPart()
	if total < 0 {
		total = 0
	}

	return total, discount, nil
}

// Quote is the price a buyer pays for one sheep.
type Quote struct {
	OriginalPrice  int64
	DiscountAmount int64
	TotalAmount    int64
	VIPApplied     bool
}

// QuoteOrder prices an order. The VIP discount only applies to local sheep bought by an active member.
func QuoteOrder(price int64, isLocal, activeVIP bool, discountPercent int64) (Quote, error) {
	quote := Quote{
		OriginalPrice: price,
		TotalAmount:   price,
	}

	if !isLocal || !activeVIP || discountPercent == 0 {
		return quote, nil
	}

	total, discount, err := ApplyVIPDiscount(price, discountPercent)
	if err != nil {
		return Quote{}, err
	}

	quote.TotalAmount = total
	quote.DiscountAmount = discount
	quote.VIPApplied = discount > 0

	return quote, nil
}

// ScheduledAmount is one entry of an installment plan.
type ScheduledAmount struct {
	Sequence int64
	Amount   int64
	DueDate  time.Time
}

// SplitInstallments divides total into count monthly amounts. The remainder of the
// integer division is carried by the first installment.
func SplitInstallments(total int64, count int, firstDue time.Time) ([]ScheduledAmount, error) {
	if count < 1 {
		return nil, ErrInvalidInstallmentCount
	}
	if total < 0 {
		return nil, fmt.Errorf("total must not be negative: got %d", total)
	}

	totalDecimal := decimal.NewFromInt(total)
	base := totalDecimal.Div(decimal.NewFromInt(int64(count))).Floor()
	remainder := totalDecimal.Sub(base.Mul(decimal.NewFromInt(int64(count))))

	schedule := make([]ScheduledAmount, count)
	for i := range count {
		amount := base
		if i == 0 {
			amount = amount.Add(remainder)
		}

		schedule[i] = ScheduledAmount{
			Sequence: int64(i + 1),
			Amount:   amount.IntPart(),
			DueDate:  addMonths(firstDue, i),
		}
	}

	return schedule, nil
}

// addMonths moves t forward by n calendar months, clamping to the last day of the target month
// so a plan starting on the 31st stays at month end instead of spilling into the next month.
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	hour, minute, second := t.Clock()
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), min(day, lastDay), hour, minute, second, t.Nanosecond(), t.Location())
}
