package validation

import "errors"

const (
	// LotSize — яйца продаются только десятками.
	LotSize = 10
	// PreorderMax — максимальное количество в одном предзаказе.
	PreorderMax = 20
	// GlobalCap — общий лимит суммы невыполненных броней.
	GlobalCap = 100
)

// ErrNegativeQuantity возвращается при отрицательном количестве в заявке.
var (
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrBelowMinimum возвращается, если суммарное количество меньше десятка.
	ErrBelowMinimum = errors.New("quantity below minimum lot")
	// ErrNotMultiple возвращается, если суммарное количество не кратно десяти.
	ErrNotMultiple = errors.New("quantity is not a multiple of lot size")
	// ErrExceedsRequestCap возвращается, если предзаказ превышает лимит на одну заявку.
	ErrExceedsRequestCap = errors.New("quantity exceeds per-request cap")
)

// ValidateOrderQuantity проверяет количества для обычного заказа:
// оба значения неотрицательны, сумма — положительное кратное десяти.
func ValidateOrderQuantity(standard, lowChol int) error {
	if standard < 0 || lowChol < 0 {
		return ErrNegativeQuantity
	}

	total := standard + lowChol
	if total < LotSize {
		return ErrBelowMinimum
	}
	if total%LotSize != 0 {
		return ErrNotMultiple
	}

	return nil
}

// ValidatePreorderQuantity проверяет количества для предзаказа:
// те же правила, что и для заказа, плюс лимит на одну заявку.
func ValidatePreorderQuantity(standard, lowChol int) error {
	if err := ValidateOrderQuantity(standard, lowChol); err != nil {
		return err
	}

	if standard+lowChol > PreorderMax {
		return ErrExceedsRequestCap
	}

	return nil
}
