// Package risk analyzes completed exchanges for pedagogical risk across five
// independent dimensions (cognitive, ethical, epistemic, technical,
// governance). Analysis runs on a bounded worker pool after the response has
// been returned, so findings never delay or alter an interaction.
package risk
