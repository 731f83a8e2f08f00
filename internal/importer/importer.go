package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"orgbanking/internal/domain"
	customersvc "orgbanking/internal/service/customer"
)

// CustomerWriter creates customers on behalf of a user.
type CustomerWriter interface {
	Create(ctx context.Context, userID, organizationID string, in customersvc.Input) (*domain.Customer, error)
}

// CSVImporter reads customer CSV files into one organization. A row whose
// identifying columns are all blank adds its other_info pair to the
// preceding customer.
type CSVImporter struct {
	reader         *csv.Reader
	writer         CustomerWriter
	userID         string
	organizationID string
}

func NewCSVImporter(r io.Reader, w CustomerWriter, userID, organizationID string) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:         csvr,
		writer:         w,
		userID:         userID,
		organizationID: organizationID,
	}
}

// Run parses every row and creates the customers it describes. It stops at
// the first failure, reporting how many customers were created before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *customersvc.Input
		imported int
	)
	line := 1

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, info, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}

		if row != nil {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
		}
		if info != nil {
			if current == nil {
				return imported, fmt.Errorf("line %d: other_info row without a customer", line)
			}
			current.OtherInfo = append(current.OtherInfo, *info)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, in *customersvc.Input) error {
	if _, err := i.writer.Create(ctx, i.userID, i.organizationID, *in); err != nil {
		return fmt.Errorf("create customer %q %q: %w", in.FirstName, in.LastName, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

// parseRow returns the customer starting on this row, if any, and the
// other_info pair the row carries, if any.
func parseRow(record []string, index map[string]int) (*customersvc.Input, *customersvc.OtherInfoInput, error) {
	var info *customersvc.OtherInfoInput
	if key := pick(record, index, "other_info.key"); key != "" {
		info = &customersvc.OtherInfoInput{Key: key, Value: pick(record, index, "other_info.value")}
	}

	in := customersvc.Input{
		Email:        pick(record, index, "email"),
		FirstName:    pick(record, index, "first_name"),
		LastName:     pick(record, index, "last_name"),
		UniqueID:     pick(record, index, "unique_id"),
		PhoneNumber:  pick(record, index, "phone_number"),
		BusinessName: pick(record, index, "business_name"),
		Location:     pick(record, index, "location"),
		Gender:       pick(record, index, "gender"),
		PostalCode:   pick(record, index, "postal_code"),
		Language:     pick(record, index, "language"),
		Country:      pick(record, index, "country"),
		City:         pick(record, index, "city"),
		Region:       pick(record, index, "region"),
		CountryCode:  pick(record, index, "country_code"),
	}
	if in.Email == "" && in.FirstName == "" && in.LastName == "" && in.UniqueID == "" {
		return nil, info, nil
	}

	if raw := pick(record, index, "age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid age %q", raw)
		}
		in.Age = age
	}
	if raw := pick(record, index, "auto_reminder"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid auto_reminder %q", raw)
		}
		in.AutoReminder = v
	}
	return &in, info, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
