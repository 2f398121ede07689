package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// ErrFieldMissing reports that a sub-element was absent from a row. Callers
// substitute a sentinel value instead of failing the row.
var ErrFieldMissing = errors.New("element not found")

// maxLoadMoreClicks bounds pagination so a stuck affordance cannot hang a job.
const maxLoadMoreClicks = 50

// Page is one open browser tab, ready for filter clicks and row extraction
type Page struct {
	ctx             context.Context
	cancel          context.CancelFunc
	selectorTimeout time.Duration
	log             zerolog.Logger
}

// Close releases the tab. Safe to call on every exit path.
func (p *Page) Close() {
	p.cancel()
}

// FilterAction is one UI interaction applied before extraction
type FilterAction struct {
	// Selector locates the control. XPath selectors (leading "/" or "(")
	// are passed through BySearch, everything else ByQuery.
	Selector string
	// Settle is how long to wait after the click; pages re-render
	// asynchronously after filter changes.
	Settle time.Duration
}

// Click applies one filter action. Failures are returned to the caller, which
// treats them as non-fatal and scrapes whatever view the page already shows.
func (p *Page) Click(action FilterAction) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.selectorTimeout)
	defer cancel()

	by := chromedp.ByQuery
	if strings.HasPrefix(action.Selector, "/") || strings.HasPrefix(action.Selector, "(") {
		by = chromedp.BySearch
	}

	err := chromedp.Run(ctx,
		chromedp.WaitVisible(action.Selector, by),
		chromedp.ScrollIntoView(action.Selector, by),
		chromedp.Click(action.Selector, by),
		chromedp.Sleep(action.Settle),
	)
	if err != nil {
		return fmt.Errorf("failed to click %q: %w", action.Selector, err)
	}

	return nil
}

// ClickWhileVisible clicks a "load more" affordance until it disappears,
// waiting settle between clicks. Absence of the affordance is end-of-data,
// not a failure.
func (p *Page) ClickWhileVisible(selector string, settle time.Duration) int {
	clicks := 0

	for clicks < maxLoadMoreClicks {
		visible, err := p.isVisible(selector)
		if err != nil || !visible {
			break
		}

		ctx, cancel := context.WithTimeout(p.ctx, p.selectorTimeout)
		err = chromedp.Run(ctx,
			chromedp.Click(selector, chromedp.ByQuery),
			chromedp.Sleep(settle),
		)
		cancel()
		if err != nil {
			break
		}
		clicks++
	}

	return clicks
}

// isVisible reports whether a selector matches a rendered element
func (p *Page) isVisible(selector string) (bool, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.selectorTimeout)
	defer cancel()

	var visible bool
	expr := fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return !!el && el.offsetParent !== null; })()`,
		selector,
	)
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &visible)); err != nil {
		return false, err
	}

	return visible, nil
}

// Rows returns a handle for every element matching the row selector
func (p *Page) Rows(selector string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.selectorTimeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(ctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to locate rows %q: %w", selector, err)
	}

	rows := make([]Row, len(nodes))
	for i, node := range nodes {
		rows[i] = Row{page: p, node: node}
	}

	return rows, nil
}

// Text returns the trimmed text of the first element matching the selector
// on the whole page. Used for single-value gauge pages.
func (p *Page) Text(selector string) (string, error) {
	ctx, cancel := context.WithTimeout(p.ctx, p.selectorTimeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(ctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	)
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", ErrFieldMissing
	}

	var text string
	err = chromedp.Run(ctx,
		chromedp.Text([]cdp.NodeID{nodes[0].NodeID}, &text, chromedp.ByNodeID),
	)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

// RowHandle is the lookup surface field extractors work against. Row
// satisfies it; tests substitute fakes so extractors run without a browser.
type RowHandle interface {
	// Text returns the trimmed text of the first sub-element matching the
	// selector, or ErrFieldMissing when the sub-element is absent.
	Text(selector string) (string, error)
	// TextAll returns the trimmed text of every matching sub-element, in
	// document order. An absent selector yields an empty slice, not an error.
	TextAll(selector string) ([]string, error)
	// Attr returns the named attribute of the first matching sub-element.
	Attr(selector, name string) (string, error)
}

// Row is an opaque reference to one rendered data row
type Row struct {
	page *Page
	node *cdp.Node
}

func (r Row) find(selector string) (*cdp.Node, error) {
	ctx, cancel := context.WithTimeout(r.page.ctx, r.page.selectorTimeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(ctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.FromNode(r.node), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrFieldMissing
	}

	return nodes[0], nil
}

// Text implements RowHandle
func (r Row) Text(selector string) (string, error) {
	node, err := r.find(selector)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(r.page.ctx, r.page.selectorTimeout)
	defer cancel()

	var text string
	err = chromedp.Run(ctx,
		chromedp.Text([]cdp.NodeID{node.NodeID}, &text, chromedp.ByNodeID),
	)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}

// TextAll implements RowHandle
func (r Row) TextAll(selector string) ([]string, error) {
	ctx, cancel := context.WithTimeout(r.page.ctx, r.page.selectorTimeout)
	defer cancel()

	var nodes []*cdp.Node
	err := chromedp.Run(ctx,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(r.node), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		var text string
		err := chromedp.Run(ctx,
			chromedp.Text([]cdp.NodeID{node.NodeID}, &text, chromedp.ByNodeID),
		)
		if err != nil {
			return nil, err
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	return texts, nil
}

// Attr implements RowHandle
func (r Row) Attr(selector, name string) (string, error) {
	node, err := r.find(selector)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(r.page.ctx, r.page.selectorTimeout)
	defer cancel()

	var value string
	var ok bool
	err = chromedp.Run(ctx,
		chromedp.AttributeValue([]cdp.NodeID{node.NodeID}, name, &value, &ok, chromedp.ByNodeID),
	)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrFieldMissing
	}

	return strings.TrimSpace(value), nil
}
