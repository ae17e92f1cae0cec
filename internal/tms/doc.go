// Package tms implements the client for the transportation management
// system REST API that supplies loads and the customer master list.
// Pagination is skip-based with a fixed inter-page pace, and a 401
// triggers exactly one token refresh and retry.
package tms
