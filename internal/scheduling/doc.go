// Package scheduling holds the pure course-calendar logic: resolving cohort
// labels to start dates, generating recurring session dates, planning
// duplicate-free backfills, accruing attendance hours and validating
// sign-in/sign-out transitions.
//
// Nothing here performs I/O. The service layer fetches records, hands them
// to these functions and executes the resulting decisions.
package scheduling
