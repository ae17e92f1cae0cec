// Package exporter writes derived dashboard tables to disk: xlsx weekly
// reports via excelize and CSV extracts for spreadsheet consumers.
package exporter
