package crawler

import (
	"sync"
)

// VisitTracker keeps the pages visited and the PDF links found, in discovery order.
type VisitTracker struct {
	pages []string
	pdfs  []string
	seen  map[string]struct{}
	mutex sync.RWMutex
}

// NewVisitTracker creates a new visit tracker
func NewVisitTracker() *VisitTracker {
	return &VisitTracker{
		seen: make(map[string]struct{}),
	}
}

// RecordVisit records a visit to a page
func (vt *VisitTracker) RecordVisit(url string) {
	vt.mutex.Lock()
	defer vt.mutex.Unlock()

	vt.pages = append(vt.pages, url)
}

// AddPDF records a PDF link. It returns false when the link was already known.
func (vt *VisitTracker) AddPDF(url string) bool {
	vt.mutex.Lock()
	defer vt.mutex.Unlock()

	if _, ok := vt.seen[url]; ok {
		return false
	}
	vt.seen[url] = struct{}{}
	vt.pdfs = append(vt.pdfs, url)
	return true
}

// PDFs returns the PDF links in discovery order.
func (vt *VisitTracker) PDFs() []string {
	vt.mutex.RLock()
	defer vt.mutex.RUnlock()

	return append([]string(nil), vt.pdfs...)
}

// GetTotalVisits returns the number of pages visited
func (vt *VisitTracker) GetTotalVisits() int {
	vt.mutex.RLock()
	defer vt.mutex.RUnlock()

	return len(vt.pages)
}
