package refdata

// Built-in safety nets. Coverage is intentionally small; the external
// JSON files carry the bulk of the canonical mappings. Keys are the
// Simplify() form of the full security name.

var canonCommon = map[string]string{
	"royal bank":                         "RY",
	"royal bank of canada":               "RY",
	"shell":                              "SHEL",
	"sony":                               "SONY",
	"toyota motor":                       "TM",
	"hsbc":                               "HSBC",
	"tencent":                            "TCEHY",
	"bhp":                                "BHP",
	"rio tinto":                          "RIO",
	"nestle":                             "NSRGY",
	"novo nordisk":                       "NVO",
	"taiwan semiconductor manufacturing": "TSM",
	"taiwan semiconductor mfg":           "TSM",
	"asml":                               "ASML",
	"sap":                                "SAP",
	"totalenergies":                      "TTE",
	"petrobras":                          "PBR",
	"santander":                          "SAN",
	"nintendo":                           "NTDOY",
	"lvmh":                               "LVMUY",
	"roche":                              "RHHBY",
	"unilever":                           "UL",
	"astrazeneca":                        "AZN",
	"canadian national railway":          "CNI",
	"palantir technologies":              "PLTR",
	"coca cola":                          "KO",
	"johnson johnson":                    "JNJ",
	"air canada":                         "AC.TO",
	"berkshire hathaway classb":          "BRK.B",
}

var etfCanonBuiltin = map[string]string{
	"spdr s p 500 etf trust":            "SPY",
	"spdr s p 500 etf":                  "SPY",
	"vanguard s p 500 etf":              "VOO",
	"vanguard sp 500 etf":               "VOO",
	"ishares core s p 500 etf":          "IVV",
	"invesco qqq trust":                 "QQQ",
	"invesco qqq trust series 1":        "QQQ",
	"invesco qqq":                       "QQQ",
	"ishares russell 2000 etf":          "IWM",
	"vanguard total stock market etf":   "VTI",
	"schwab u s broad market etf":       "SCHB",
	"ishares msci eafe etf":             "EFA",
	"ishares msci emerging markets etf": "EEM",
	"ishares 20 year treasury bond etf": "TLT",
	"spdr gold trust":                   "GLD",
	"spdr gold shares":                  "GLD",
	"spdr gold":                         "GLD",
	"vaneck gold miners etf":            "GDX",
	"ishares iboxx investment grade corporate bond etf": "LQD",
	"ishares iboxx high yield corporate bond etf":       "HYG",
	"technology select sector spdr fund":                "XLK",
	"financial select sector spdr fund":                 "XLF",
}
