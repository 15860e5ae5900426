// Package generator produces synthetic Windows event and DNS query logs for demos and tests.
package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// Options configures a Generator.
type Options struct {
	WindowsCount       int
	DNSCount           int
	SuspiciousTLDRatio float64
	LongNameRatio      float64
	// Seed makes output reproducible; 0 picks a random seed.
	Seed int64
	// End is the latest event time; zero means now.
	End    time.Time
	Spread time.Duration
}

// Generator creates log records with a realistic mix of benign and suspicious activity.
type Generator struct {
	faker *gofakeit.Faker
	opts  Options

	hosts        []string
	users        []string
	benign       []string
	suspicious   []string
	longNames    []string
	eventWeights []weightedCode
}

type weightedCode struct {
	code   string
	name   string
	weight int
}

// Windows security audit codes with rough relative frequencies
var windowsCodes = []weightedCode{
	{"4624", "An account was successfully logged on", 30},
	{"4634", "An account was logged off", 20},
	{"4688", "A new process has been created", 18},
	{"4689", "A process has exited", 15},
	{"4672", "Special privileges assigned to new logon", 8},
	{"5156", "The Windows Filtering Platform has permitted a connection", 12},
	{"4625", "An account failed to log on", 6},
	{"4656", "A handle to an object was requested", 4},
	{"4703", "A user right was adjusted", 3},
	{"4698", "A scheduled task was created", 1},
	{"1102", "The audit log was cleared", 1},
}

var suspiciousTLDs = []string{".xyz", ".top", ".bid", ".download", ".science", ".win"}

// New creates a generator with pools of hosts, users and domains drawn from opts.Seed.
func New(opts Options) *Generator {
	if opts.End.IsZero() {
		opts.End = time.Now()
	}
	if opts.Spread <= 0 {
		opts.Spread = 24 * time.Hour
	}

	f := gofakeit.New(opts.Seed)
	g := &Generator{faker: f, opts: opts, eventWeights: windowsCodes}

	for i := 0; i < 8; i++ {
		g.hosts = append(g.hosts, strings.ToLower(fmt.Sprintf("%s-%s%d", f.RandomString([]string{"we", "ws", "srv", "dc"}), f.LetterN(4), f.Number(1, 99))))
	}
	for i := 0; i < 12; i++ {
		g.users = append(g.users, strings.ToLower(f.Username()))
	}
	for i := 0; i < 40; i++ {
		g.benign = append(g.benign, strings.ToLower(f.DomainName()))
	}
	for i := 0; i < 12; i++ {
		g.suspicious = append(g.suspicious, strings.ToLower(f.Word()+f.Word())+f.RandomString(suspiciousTLDs))
	}
	for i := 0; i < 6; i++ {
		g.longNames = append(g.longNames, strings.ToLower(f.LetterN(uint(f.Number(45, 60))))+"."+strings.ToLower(f.DomainName()))
	}
	return g
}

// WindowsEvents returns WinEventLog:Security records shaped like a Splunk search export row.
// Account_Name is multi-valued for logon events, as Splunk extracts it.
func (g *Generator) WindowsEvents() []models.RawRecord {
	f := g.faker
	records := make([]models.RawRecord, 0, g.opts.WindowsCount)
	for i := 0; i < g.opts.WindowsCount; i++ {
		code := g.pickCode()
		host := f.RandomString(g.hosts)

		rec := models.RawRecord{
			"_time":        g.timestamp(),
			"host":         host,
			"source":       "WinEventLog:Security",
			"sourcetype":   "WinEventLog:Security",
			"LogName":      "Security",
			"EventCode":    code.code,
			"ComputerName": strings.ToUpper(host),
			"Message":      code.name,
		}

		switch code.code {
		case "4624", "4625", "4672", "4634":
			rec["Account_Name"] = []interface{}{strings.ToUpper(host) + "$", f.RandomString(g.users)}
			rec["Logon_Type"] = f.RandomString([]string{"2", "3", "5", "10"})
		default:
			rec["Account_Name"] = f.RandomString(g.users)
		}
		if code.code == "4688" {
			rec["New_Process_Name"] = f.RandomString([]string{
				`C:\Windows\System32\cmd.exe`,
				`C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`,
				`C:\Windows\System32\svchost.exe`,
				`C:\Users\Public\osk.exe`,
			})
		}
		records = append(records, rec)
	}
	return records
}

// DNSQueries returns stream:dns style records with a query field.
func (g *Generator) DNSQueries() []models.RawRecord {
	f := g.faker
	records := make([]models.RawRecord, 0, g.opts.DNSCount)
	for i := 0; i < g.opts.DNSCount; i++ {
		roll := f.Float64()

		var name string
		switch {
		case roll < g.opts.SuspiciousTLDRatio:
			name = f.RandomString(g.suspicious)
		case roll < g.opts.SuspiciousTLDRatio+g.opts.LongNameRatio:
			name = f.RandomString(g.longNames)
		default:
			name = f.RandomString(g.benign)
		}
		// Resolver logs keep whatever case the client sent
		if f.Number(0, 9) == 0 {
			name = strings.ToUpper(name)
		}

		records = append(records, models.RawRecord{
			"_time":       g.timestamp(),
			"sourcetype":  "stream:dns",
			"src_ip":      f.IPv4Address(),
			"query":       name,
			"query_type":  f.RandomString([]string{"A", "AAAA", "CNAME", "MX", "TXT"}),
			"reply_code":  f.RandomString([]string{"NoError", "NoError", "NoError", "NXDomain", "ServFail"}),
			"transport":   "udp",
			"record_type": "query",
		})
	}
	return records
}

func (g *Generator) pickCode() weightedCode {
	total := 0
	for _, c := range g.eventWeights {
		total += c.weight
	}
	n := g.faker.Number(1, total)
	for _, c := range g.eventWeights {
		n -= c.weight
		if n <= 0 {
			return c
		}
	}
	return g.eventWeights[len(g.eventWeights)-1]
}

func (g *Generator) timestamp() string {
	start := g.opts.End.Add(-g.opts.Spread)
	return g.faker.DateRange(start, g.opts.End).UTC().Format(time.RFC3339)
}
