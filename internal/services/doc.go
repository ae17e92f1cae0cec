// Package services holds the business layer between the TMS client and
// the HTTP transport. DashboardService runs the analytics pipeline over
// a freshly fetched snapshot and answers dashboard queries from the
// latest immutable result.
package services
