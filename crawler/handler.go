package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// OnRequest records every page fetch
func (c *Collector) OnRequest() colly.RequestCallback {
	return func(r *colly.Request) {
		if err := c.ctx.Err(); err != nil {
			r.Abort()
			return
		}
		c.tracker.RecordVisit(r.URL.String())
	}
}

// OnHTML follows page links from the index and gathers PDF links
func (c *Collector) OnHTML() colly.HTMLCallback {
	return func(e *colly.HTMLElement) {
		isIndex := e.Request.Depth <= 1
		skipped := 0

		e.DOM.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			href = strings.TrimSpace(href)

			if c.validator.IsPDFLink(href) {
				c.addPDF(e.Request.AbsoluteURL(href))
				return
			}
			if !isIndex || !c.validator.IsPageLink(href) {
				return
			}
			if skipped < c.config.SkipLinks {
				skipped++
				c.logger.Debug("Skipping index link", zap.String("href", href))
				return
			}

			// already-visited pages come back as errors too
			if err := e.Request.Visit(href); err != nil {
				c.logger.Debug("Page not visited",
					zap.String("href", href),
					zap.Error(err))
			}
		})
	}
}

// OnError logs failed page fetches; the crawl carries on
func (c *Collector) OnError() colly.ErrorCallback {
	return func(r *colly.Response, err error) {
		if r == nil || r.Request == nil {
			c.logger.Warn("Request failed", zap.Error(err))
			return
		}
		c.logger.Warn("HTTP error",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status_code", r.StatusCode),
			zap.Error(err))
	}
}

// OnResponse logs visited pages
func (c *Collector) OnResponse() colly.ResponseCallback {
	return func(r *colly.Response) {
		c.logger.Info("Visited page",
			zap.String("url", r.Request.URL.String()),
			zap.Int("status", r.StatusCode),
			zap.Int("depth", r.Request.Depth))
	}
}

func (c *Collector) addPDF(rawURL string) {
	if rawURL == "" {
		return
	}
	if c.tracker.AddPDF(rawURL) {
		c.logger.Debug("Found PDF", zap.String("url", rawURL))
	}
}
