package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// fakeFetcher serves canned pages by URL and records every request.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]string
	requests []fetcher.Request
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages}
}

func (f *fakeFetcher) Fetch(_ context.Context, req fetcher.Request) (fetcher.Page, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if req.RenderJS {
		return fetcher.Page{}, fetcher.ErrHeadlessUnavailable
	}
	body, ok := f.pages[req.URL]
	if !ok {
		return fetcher.Page{}, fmt.Errorf("connection reset by %s", req.URL)
	}
	doc, err := fetcher.ParseDocument([]byte(body))
	if err != nil {
		return fetcher.Page{}, err
	}
	return fetcher.Page{URL: req.URL, StatusCode: 200, Body: []byte(body), Doc: doc}, nil
}

func (f *fakeFetcher) requested() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	urls := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		urls = append(urls, r.URL)
	}
	return urls
}

func (f *fakeFetcher) request(url string) (fetcher.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.URL == url {
			return r, true
		}
	}
	return fetcher.Request{}, false
}

const sscNRPage = `<html><body>
<table>
<tr><td><a href="/pdf/cgl2025.pdf">Combined Graduate Level Examination 2025 Notification</a></td><td>01-03-2025</td><td>31-03-2025</td></tr>
<tr><td><a href="javascript:void(0)">Selection Post Phase XIII Examination 2025</a></td><td>02-03-2025</td></tr>
<tr><td><a href="https://sscnr.nic.in/tender.pdf">Tender for printing of stationery items</a></td></tr>
</table>
<ul><li><a href="/pdf/x.pdf">Click here</a></li></ul>
</body></html>`

func TestSSCFallsBackToMirrors(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(map[string]string{"https://sscnr.nic.in/newpages/latest.php": sscNRPage})
	notices := NewSSC(f, zap.NewNop()).FetchRaw(context.Background())

	require.Len(t, notices, 1)
	n := notices[0]
	assert.Equal(t, "Combined Graduate Level Examination 2025 Notification", n.Title)
	assert.Equal(t, "https://sscnr.nic.in/pdf/cgl2025.pdf", n.ApplyURL)
	assert.Equal(t, "Staff Selection Commission (SSC)", n.SourceName)
	assert.Equal(t, "https://ssc.gov.in", n.SourceURL)
	assert.Equal(t, "SSC", n.Category)
	assert.Equal(t, notice.StateCentral, n.State)
	assert.Equal(t, notice.TypeRecruitment, n.NoticeType)
	require.NotNil(t, n.PublishedDate)
	require.NotNil(t, n.LastDate)
	assert.Equal(t, "2025-03-01", n.PublishedDate.String())
	assert.Equal(t, "2025-03-31", n.LastDate.String())

	assert.Equal(t, []string{
		"https://sscnr.nic.in/newpages/latest.php",
		"https://sscner.nic.in/newpages/latest.php",
		"https://ssc.gov.in/home/notice-board",
	}, f.requested())
	portal, ok := f.request("https://ssc.gov.in/home/notice-board")
	require.True(t, ok)
	assert.True(t, portal.RenderJS)
}

func TestAdapterLeavesBulletinPrefixForIngest(t *testing.T) {
	t.Parallel()

	page := `<html><body><table>
<tr><td><a href="/pdf/cgl2026.pdf">Update:  Combined Graduate Level  Examination 2026 Notification</a></td><td>01-03-2026</td></tr>
</table></body></html>`
	f := newFakeFetcher(map[string]string{"https://sscnr.nic.in/newpages/latest.php": page})

	notices := NewSSC(f, zap.NewNop()).FetchRaw(context.Background())
	require.Len(t, notices, 1)
	assert.Equal(t, "Update: Combined Graduate Level Examination 2026 Notification", notices[0].Title)
}

func TestSSCSkipsMirrorsWhenPrimaryIsRich(t *testing.T) {
	t.Parallel()

	var rows strings.Builder
	for i := 1; i <= 6; i++ {
		fmt.Fprintf(&rows, `<tr><td><a href="/pdf/n%d.pdf">Recruitment of Stenographer Grade C batch %d</a></td></tr>`, i, i)
	}
	page := "<html><body><table>" + rows.String() + "</table></body></html>"
	f := newFakeFetcher(map[string]string{"https://sscnr.nic.in/newpages/latest.php": page})

	notices := NewSSC(f, nil).FetchRaw(context.Background())
	assert.Len(t, notices, 6)
	assert.Equal(t, []string{"https://sscnr.nic.in/newpages/latest.php"}, f.requested())
}

func TestFetchFailureYieldsEmptyList(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(nil)
	for _, src := range Build(f, zap.NewNop(), nil) {
		assert.Empty(t, src.FetchRaw(context.Background()), src.Name())
	}
}

func TestFallbackSelectorsUsedOnlyWhenPreferredMatchNothing(t *testing.T) {
	t.Parallel()

	page := `<html><body><div>
<a href="/recruit/po-2025">IBPS PO Recruitment 2025 Notification</a>
<a href="/about">About the institute and its history</a>
</div></body></html>`
	f := newFakeFetcher(map[string]string{"https://www.ibps.in/category/recruitment/": page})

	notices := NewIBPS(f, nil).FetchRaw(context.Background())
	require.Len(t, notices, 1)
	assert.Equal(t, "https://www.ibps.in/recruit/po-2025", notices[0].ApplyURL)
	assert.Equal(t, "BANK", notices[0].Category)
}

func TestEndpointLimitCapsOutput(t *testing.T) {
	t.Parallel()

	var items strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&items, `<li><a href="/advt/%d.pdf">Recruitment of Assistant Professor post %d</a></li>`, i, i)
	}
	page := "<html><body><ul>" + items.String() + "</ul></body></html>"
	f := newFakeFetcher(map[string]string{"https://upsc.gov.in/recruitment/recruitment-advertisement": page})

	notices := NewUPSC(f, nil).FetchRaw(context.Background())
	assert.Len(t, notices, 25)
}

func TestStrictAndInsecureRequestFlags(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(nil)
	NewSBI(f, nil).FetchRaw(context.Background())
	NewRRB(f, nil).FetchRaw(context.Background())

	sbi, ok := f.request("https://bank.sbi/web/careers/current-openings")
	require.True(t, ok)
	assert.False(t, sbi.Lax)
	assert.False(t, sbi.InsecureTLS)

	rrc, ok := f.request("https://www.rrcnr.org/recr.aspx")
	require.True(t, ok)
	assert.True(t, rrc.Lax)
	assert.True(t, rrc.InsecureTLS)
	assert.Len(t, f.requested(), 4)
}

func TestTNPSCNumericDatesFromParent(t *testing.T) {
	t.Parallel()

	page := `<html><body><div class="news">
<p><a href="/Document/english/12_2025_GroupIV.pdf">Combined Civil Services Examination Group IV</a> Date of Notification 25 04 2025 Last Date 24.05.2025</p>
<p><a href="/pdf/tender.pdf">Tender notice for housekeeping services</a></p>
</div></body></html>`
	f := newFakeFetcher(map[string]string{"https://www.tnpsc.gov.in": page})

	notices := NewTNPSC(f, nil).FetchRaw(context.Background())
	require.Len(t, notices, 1)
	n := notices[0]
	assert.Equal(t, "Tamil Nadu", n.State)
	assert.Equal(t, "STATE", n.Category)
	assert.Equal(t, "https://www.tnpsc.gov.in/Document/english/12_2025_GroupIV.pdf", n.ApplyURL)
	require.NotNil(t, n.PublishedDate)
	require.NotNil(t, n.LastDate)
	assert.Equal(t, "2025-04-25", n.PublishedDate.String())
	assert.Equal(t, "2025-05-24", n.LastDate.String())
}

func TestEmploymentNewsDerivesCategoryAndStateFromRows(t *testing.T) {
	t.Parallel()

	page := `<html><body><table>
<tr><th>Advertisement</th><th>Published</th></tr>
<tr><td><a href="/advt/1.pdf">Kerala State Bank Cooperative Officer Recruitment</a></td><td>15 March 2025</td></tr>
<tr><td><a href="/advt/2.pdf">Indian Army Technical Entry Scheme Course</a></td><td>16 March 2025</td></tr>
<tr><td><a href="/advt/3.pdf">Deputy Director Fisheries Department</a></td><td>17 March 2025</td></tr>
</table></body></html>`
	f := newFakeFetcher(map[string]string{"https://employmentnews.gov.in/NewVer/Pages/Advt.aspx": page})

	notices := NewEmploymentNews(f, nil).FetchRaw(context.Background())
	require.Len(t, notices, 3)

	assert.Equal(t, "BANK", notices[0].Category)
	assert.Equal(t, "Kerala", notices[0].State)
	assert.Equal(t, "DEFENCE", notices[1].Category)
	assert.Equal(t, notice.StateCentral, notices[1].State)
	assert.Equal(t, "OTHERS", notices[2].Category)
	assert.Equal(t, "2025-03-17", notices[2].PublishedDate.String())
}

func TestStatePSCExcludesResultsAndTagsEachCommission(t *testing.T) {
	t.Parallel()

	page := `<html><body><table>
<tr><td><a href="/advt/ae.pdf">Recruitment of Assistant Engineer (Civil)</a></td></tr>
<tr><td><a href="/res/ae.pdf">Assistant Engineer Recruitment Result</a></td></tr>
<tr><td><a href="/">Odisha Public Service Commission (OPSC)</a></td></tr>
</table></body></html>`
	f := newFakeFetcher(map[string]string{
		"https://kpsc.kar.nic.in/recruitment.aspx": page,
		"https://opsc.gov.in/Advt.aspx":            page,
	})

	notices := NewStatePSC(f, nil).FetchRaw(context.Background())
	require.Len(t, notices, 2)

	assert.Equal(t, "KPSC (Karnataka PSC)", notices[0].SourceName)
	assert.Equal(t, "Karnataka", notices[0].State)
	assert.Equal(t, "https://kpsc.kar.nic.in/advt/ae.pdf", notices[0].ApplyURL)
	assert.Equal(t, []string{"CIVIL"}, notices[0].EngineeringBranches)

	assert.Equal(t, "OPSC (Odisha PSC)", notices[1].SourceName)
	assert.Equal(t, "https://opsc.gov.in", notices[1].SourceURL)
	assert.Equal(t, "Odisha", notices[1].State)
	assert.Equal(t, "STATE", notices[1].Category)
}

func TestMedicalUsesStricterFilterForNHM(t *testing.T) {
	t.Parallel()

	page := `<html><body><table>
<tr><td><a href="/docs/walkin.pdf">Walk-in interview for Staff Nurse posts</a></td></tr>
<tr><td><a href="/docs/guidelines.pdf">Operational guidelines for Staff Nurse training</a></td></tr>
</table></body></html>`
	f := newFakeFetcher(map[string]string{
		"https://nhm.gov.in/index1.php?lang=1&level=1&sublinkid=971&lid=235": page,
	})

	notices := NewMedical(f, nil).FetchRaw(context.Background())
	require.Len(t, notices, 1)
	assert.Equal(t, "NHM (National Health Mission)", notices[0].SourceName)
	assert.Equal(t, "https://nhm.gov.in/docs/walkin.pdf", notices[0].ApplyURL)
	assert.Equal(t, "MEDICAL", notices[0].Category)
}

func TestCanceledContextStopsBeforeFetching(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newFakeFetcher(nil)
	assert.Empty(t, NewStatePSC(f, nil).FetchRaw(ctx))
	assert.Empty(t, f.requested())
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(nil)
	_, err := New(Config{}, f, nil)
	require.Error(t, err)

	_, err = New(Config{Name: "x"}, nil, nil)
	require.Error(t, err)

	_, err = New(Config{Name: "x", Endpoints: []Endpoint{{Label: "no url"}}}, f, nil)
	require.Error(t, err)

	_, err = New(Config{Name: "x", Endpoints: []Endpoint{{URL: "https://x", Selectors: "a[href"}}}, f, nil)
	require.Error(t, err)

	site, err := New(Config{Name: "x", URL: "https://x", Category: "PSU"}, f, nil)
	require.NoError(t, err)
	assert.Equal(t, notice.StateCentral, site.State())
	assert.Equal(t, "PSU", site.Category())
}

func TestBuildRegistry(t *testing.T) {
	t.Parallel()

	f := newFakeFetcher(nil)
	all := Build(f, nil, nil)
	require.Len(t, all, len(Keys()))

	names := make(map[string]bool)
	for _, src := range all {
		require.NotEmpty(t, src.URL())
		require.NotEmpty(t, src.Category())
		require.False(t, names[src.Name()], "duplicate source %s", src.Name())
		names[src.Name()] = true
	}

	subset := Build(f, nil, []string{"sbi", "upsc"})
	require.Len(t, subset, 2)
	assert.Equal(t, "State Bank of India (SBI)", subset[0].Name())
	assert.Equal(t, "UPSC (Union Public Service Commission)", subset[1].Name())
}

func TestFilters(t *testing.T) {
	t.Parallel()

	assert.True(t, Keywords{"recruit"}.Match("RECRUITMENT of clerks"))
	assert.False(t, Keywords{"recruit"}.Match("Tender notice"))
	assert.True(t, ExactTitles{"home page"}.Match("  Home Page "))
	assert.False(t, ExactTitles{"home page"}.Match("Home Page 2"))

	f := Excluding{Include: Keywords{"engineer"}, Exclude: Keywords{"result"}}
	assert.True(t, f.Match("Junior Engineer vacancies"))
	assert.False(t, f.Match("Junior Engineer result"))
	assert.True(t, Excluding{}.Match("anything"))
}

func TestEndpointErrorsAreIsolated(t *testing.T) {
	t.Parallel()

	f := fetcher.Func(func(context.Context, fetcher.Request) (fetcher.Page, error) {
		return fetcher.Page{}, errors.New("boom")
	})
	site, err := New(Config{Name: "x", Endpoints: []Endpoint{
		{URL: "https://a"}, {URL: "https://b"},
	}}, f, nil)
	require.NoError(t, err)
	assert.Empty(t, site.FetchRaw(context.Background()))
}
