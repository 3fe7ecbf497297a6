package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches one row of SHOW COLUMNS output.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string // pointer because a NULL default is possible
	Extra   string
}

// GetTableColumns retrieves the column definitions for a given table.
// Used by the reconcile preflight to verify the reference tables carry the
// normalized name-key columns the upsert path depends on.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo

	err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	// Normalize for case-insensitive lookups
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// HasColumn reports whether the table defines the named column.
func HasColumn(db *gorm.DB, tableName, column string) (bool, error) {
	columns, err := GetTableColumns(db, tableName)
	if err != nil {
		return false, err
	}
	column = strings.ToLower(column)
	for _, c := range columns {
		if c.Field == column {
			return true, nil
		}
	}
	return false, nil
}
