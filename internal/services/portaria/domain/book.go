package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/diariourbano/portaria/internal/errors"
	"github.com/diariourbano/portaria/internal/platform/id"
)

// NumberPlaceholder marks where the allocated value lands in a number format.
const NumberPlaceholder = "{N}"

// NumberPadWidth is the fixed zero-padding width for allocated numbers.
// Values wider than the padding render unpadded; digits are never dropped.
const NumberPadWidth = 4

const (
	// DefaultBookName names the book auto-created on first allocation.
	DefaultBookName = "Livro de Portarias"
	// DefaultNumberFormat is the format used when no book was configured.
	DefaultNumberFormat = "PORT-{N}/CITY"
	// DefaultStartingNumber is the cursor origin for the auto-created book.
	DefaultStartingNumber = 1
)

// SequenceBook is one independently-numbered book of official numbers.
// Only the allocator advances NextNumber, always under the store's write lock.
type SequenceBook struct {
	ID             string
	Name           string
	NumberFormat   string
	StartingNumber uint64
	NextNumber     uint64
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateNumberFormat rejects formats without exactly one {N} placeholder.
func ValidateNumberFormat(format string) error {
	if strings.Count(format, NumberPlaceholder) != 1 {
		return apperrors.New(apperrors.CodeBookFormatInvalid, "number format must contain exactly one {N} placeholder")
	}
	return nil
}

// FormatNumber renders n into the format's placeholder, zero-padded to
// NumberPadWidth digits. Overflowing values render at full width.
func FormatNumber(format string, n uint64) string {
	padded := fmt.Sprintf("%0*d", NumberPadWidth, n)
	return strings.Replace(format, NumberPlaceholder, padded, 1)
}

// PadNumber renders the raw allocated value the way the allocation log stores it.
func PadNumber(n uint64) string {
	return fmt.Sprintf("%0*d", NumberPadWidth, n)
}

// NewDefaultBook builds the book auto-created on first allocation.
func NewDefaultBook(now func() time.Time, idGenerator func() (string, error)) (SequenceBook, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	bookID, err := idGenerator()
	if err != nil {
		return SequenceBook{}, fmt.Errorf("generate book id: %w", err)
	}
	createdAt := now().UTC()
	return SequenceBook{
		ID:             bookID,
		Name:           DefaultBookName,
		NumberFormat:   DefaultNumberFormat,
		StartingNumber: DefaultStartingNumber,
		NextNumber:     DefaultStartingNumber,
		Active:         true,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}, nil
}
