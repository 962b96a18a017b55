package registry

import "github.com/crestline-research/finmap/internal/model"

// builtinTargets is the shipped target table, tuned against Capitaline IND-AS
// and pre-IND-AS exports. Pattern text is normalized at load, so entries may
// be written with the punctuation the vendor uses. Order within a pattern
// list is most-canonical-first; order of the table itself fixes tie handling
// between equal scores and priorities.
//
// EBIT and EBITDA carry no patterns: they never map from a row and exist only
// through the formula registry.
var builtinTargets = []model.TargetDefinition{
	// Balance sheet: assets.
	{
		Name:      "Total Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"total assets", "total of assets", "total equity and liabilities", "assets total"},
		Priority:  10,
	},
	{
		Name:      "Current Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"current assets", "total current assets"},
		Exclude:   []string{"non current"},
		Priority:  9,
	},
	{
		Name:      "Non-Current Assets",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"non-current assets", "non current assets", "total non-current assets",
			"total reported non-current assets", "total non current and other assets",
		},
		Priority: 9,
	},
	{
		Name:      "Cash and Cash Equivalents",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"cash and cash equivalents", "cash & cash equivalents", "cash and bank",
			"cash balance", "cash at bank",
		},
		Exclude:  []string{"bank balances other than"},
		Priority: 8,
	},
	{
		// "Balances with Bank / Margin Money Balances" is a zero-value
		// catch-all in many Capitaline exports; the tiebreak registry prefers
		// the "other than cash" aggregate when both score equal.
		Name:      "Bank Balances",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"bank balances other than cash",
			"bank balances other than",
			"other bank balances",
			"bank balances other than cash and cash equivalents",
			"earmarked balances with bank",
			"balances with bank / margin money balances",
			"margin money balances",
		},
		Priority: 6,
	},
	{
		Name:      "Short-term Investments",
		Statement: model.BalanceSheet,
		Patterns:  []string{"current investments", "short term investments", "short-term investments"},
		Exclude:   []string{"non current", "long term", "investments long"},
		Priority:  7,
	},
	{
		Name:      "Long-term Investments",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"investments - long-term",
			"non-current investments",
			"long term investments",
			"investments in subsidiaries",
			"investments in associates",
			"investments in subsidiaries, associates and joint venture",
			"total investment in subsidiaries associates and joint venture",
			"total investments",
			"total long-term stock",
			"associate companies",
			"joint venture companies",
			"subsidiary companies",
		},
		Exclude:  []string{"current investments", "short term", "stock in trade"},
		Priority: 7,
	},
	{
		// The exact total line must win over component rows; raw materials,
		// WIP and finished goods are excluded so a zero-value sub-item cannot
		// take the slot, and the fallback registry recovers the total when it
		// still happens.
		Name:      "Inventory",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"inventories",
			"total inventory",
			"total inventories",
			"inventory",
			"stock in trade",
			"stores and spares",
		},
		Exclude: []string{
			"changes in inventories",
			"non current portion",
			"raw materials",
			"finished goods",
			"work in progress",
			"packing material",
			"other material",
			"opening stock",
			"closing stock",
		},
		Priority:    7,
		ZeroSuspect: true,
	},
	{
		Name:      "Trade Receivables",
		Statement: model.BalanceSheet,
		Patterns:  []string{"trade receivables", "sundry debtors", "accounts receivable", "debtors"},
		Priority:  7,
	},
	{
		Name:      "Other Current Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"other current assets"},
		Exclude:   []string{"total", "non current"},
		Priority:  5,
	},
	{
		Name:      "Short-term Loans",
		Statement: model.BalanceSheet,
		Patterns:  []string{"short term loans", "loans repayable on demand", "loans current"},
		Exclude:   []string{"long term", "non current"},
		Priority:  6,
	},
	{
		// Capitaline "Others Financial Assets - Short-term" normalizes to an
		// exact pattern here, which outscores the spurious substring matches
		// that row used to win elsewhere.
		Name:      "Other Short-term Financial Assets",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"other short term financial assets",
			"other financial assets current",
			"others financial assets short term",
			"others financial assets - short-term",
		},
		Exclude:  []string{"non current"},
		Priority: 5,
	},
	{
		Name:      "Assets Held for Sale",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"assets held for sale",
			"non-current assets held for sale",
			"fixed assets held for sale",
			"assets classified as held for sale",
			"assets classified as disposal group / discontinued operations",
			"assets held for disposal",
		},
		Priority: 5,
	},
	{
		Name:      "Property Plant Equipment",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"property, plant and equipment",
			"ppe",
			"net block",
			"net property, plant and equipment",
			"tangible assets",
			"tangible assets net",
		},
		Exclude: []string{
			"purchase of property", "gross property", "total accumulated",
			"total depreciation", "total impairment",
		},
		Priority:      7,
		Abbreviations: []string{"ppe"},
	},
	{
		Name:      "Goodwill",
		Statement: model.BalanceSheet,
		Patterns:  []string{"goodwill"},
		Exclude:   []string{"goodwill impairment"},
		Priority:  6,
	},
	{
		Name:      "Intangible Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"intangible assets"},
		Exclude:   []string{"under development"},
		Priority:  6,
	},
	{
		Name:      "Right of Use Assets",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"right of use assets",
			"rou assets",
			"net value of rights use assets",
			"total cost rights use assets",
			"other rights-use-assets",
			"rou mining properties",
		},
		Priority: 5,
	},
	{
		Name:      "Capital Work in Progress",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"capital work in progress",
			"cwip",
			"gross capital work in progress",
			"net capital work in progress",
			"other capital work in progress",
		},
		Priority:      5,
		Abbreviations: []string{"cwip"},
	},
	{
		Name:      "Fixed Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"fixed assets", "total fixed assets"},
		Exclude:   []string{"purchase of fixed", "sale of fixed", "held for sale"},
		Priority:  6,
	},
	{
		Name:      "Investment Property",
		Statement: model.BalanceSheet,
		Patterns:  []string{"investment properties", "investment property"},
		Priority:  5,
	},
	{
		Name:      "Deferred Tax Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"deferred tax assets", "deferred tax asset", "deferred tax assets (net)", "net deferred tax assets"},
		Exclude:   []string{"liabilities"},
		Priority:  5,
	},
	{
		Name:      "Other Non-Current Assets",
		Statement: model.BalanceSheet,
		Patterns:  []string{"other non-current assets"},
		Exclude:   []string{"total"},
		Priority:  4,
	},

	// Balance sheet: liabilities.
	{
		Name:      "Total Liabilities",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"total liabilities",
			"total non-current liabilities and current liabilities",
		},
		// "equity" blocks "Total Equity and Liabilities", "assets" blocks
		// "Total Assets", "reported" blocks the reported-non-current subtotal.
		Exclude:  []string{"equity", "assets", "reported"},
		Priority: 10,
	},
	{
		Name:      "Current Liabilities",
		Statement: model.BalanceSheet,
		Patterns:  []string{"current liabilities", "total current liabilities"},
		Exclude:   []string{"non current"},
		Priority:  9,
	},
	{
		Name:      "Non-Current Liabilities",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"non-current liabilities", "non current liabilities",
			"total non-current liabilities", "total reported non-current liabilities",
		},
		Priority: 9,
	},
	{
		Name:      "Accounts Payable",
		Statement: model.BalanceSheet,
		Patterns:  []string{"trade payables", "sundry creditors", "accounts payable", "creditors"},
		Priority:  7,
	},
	{
		Name:      "Short-term Debt",
		Statement: model.BalanceSheet,
		Patterns:  []string{"short term borrowings", "current borrowings", "short-term borrowings"},
		Exclude:   []string{"long term", "non current"},
		Priority:  8,
	},
	{
		Name:      "Long-term Debt",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"long term borrowings", "non-current borrowings", "long-term borrowings",
			"term loans", "secured loans", "debentures",
		},
		Exclude:  []string{"short term", "current"},
		Priority: 8,
	},
	{
		Name:      "Lease Liabilities",
		Statement: model.BalanceSheet,
		Patterns:  []string{"lease liabilities", "lease liability", "finance lease obligations"},
		Priority:  5,
	},
	{
		Name:      "Other Current Liabilities",
		Statement: model.BalanceSheet,
		Patterns:  []string{"other current liabilities"},
		Exclude:   []string{"total", "non current"},
		Priority:  5,
	},
	{
		Name:      "Current Tax Liabilities",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"current tax liabilities",
			"current tax liability",
			"income tax payable",
			"current tax payable",
			"income tax liability",
			"current tax liabilities - short-term",
			"current tax assets short-term",
		},
		Exclude:  []string{"deferred", "non current", "long term"},
		Priority: 5,
	},
	{
		Name:      "Other Short-term Liabilities",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"other short term liabilities",
			"others financial liabilities short term",
			"others financial liabilities - short-term",
		},
		Exclude:  []string{"non current"},
		Priority: 5,
	},
	{
		Name:      "Liabilities Held for Sale",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"liabilities held for sale",
			"liability directly associated with assets held for sale",
			"liabilities directly associated with assets classified as held for sale",
		},
		Priority: 5,
	},
	{
		Name:      "Other Non-Current Liabilities",
		Statement: model.BalanceSheet,
		Patterns:  []string{"other non-current liabilities"},
		Exclude:   []string{"total"},
		Priority:  5,
	},
	{
		Name:      "Provisions",
		Statement: model.BalanceSheet,
		Patterns:  []string{"provisions", "long-term provisions", "short-term provisions"},
		Exclude:   []string{"provision for tax"},
		Priority:  5,
	},
	{
		Name:      "Deferred Tax Liabilities",
		Statement: model.BalanceSheet,
		Patterns:  []string{"deferred tax liabilities", "deferred tax liability", "deferred tax liabilities (net)"},
		Exclude:   []string{"assets"},
		Priority:  5,
	},

	// Balance sheet: equity.
	{
		Name:      "Total Equity",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"total equity",
			"total stockholders' equity",
			"shareholders funds",
			"total shareholders funds",
			"net worth",
			"total equity and minority interest",
		},
		Exclude:  []string{"total equity and liabilities"},
		Priority: 10,
	},
	{
		Name:      "Share Capital",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"share capital",
			"equity share capital",
			"paid-up capital",
			"paid up share capital",
			"equity share capital paid up",
		},
		Exclude:  []string{"number of", "application money"},
		Priority: 8,
	},
	{
		Name:      "Retained Earnings",
		Statement: model.BalanceSheet,
		Patterns:  []string{"reserves and surplus", "retained earnings", "other equity", "reserves & surplus"},
		Priority:  7,
	},
	{
		// "nci" is a three-letter code; short patterns only match on token
		// boundaries, and the excludes additionally block the financial
		// asset/liability rows that contain it as a fragment.
		Name:      "Minority Interest",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"minority interest",
			"non-controlling interest",
			"non-controlling interests",
			"nci",
		},
		Exclude:       []string{"financial liabilities", "financial assets"},
		Priority:      5,
		Abbreviations: []string{"nci"},
	},
	{
		Name:      "Contingent Liabilities",
		Statement: model.BalanceSheet,
		Patterns: []string{
			"contingent liabilities",
			"contingent liabilities and commitments",
			"contingent liabilities and commitments (to the extent not provided for)",
		},
		Priority: 4,
	},

	// Profit and loss: income.
	{
		// Capitaline exports both "Revenue From Operations" (gross) and
		// "Revenue From Operations(Net)". The net line is canonical; the
		// tiebreak registry prefers it when both score equal.
		Name:      "Revenue",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"revenue from operations net",
			"revenue from operations(net)",
			"net revenue from operations",
			"net sales",
			"sales turnover",
			"total revenue from operations",
			"revenue from operations",
		},
		Exclude:  []string{"total revenue", "less excise", "excise duty"},
		Priority: 10,
	},
	{
		Name:      "Total Revenue",
		Statement: model.ProfitLoss,
		Patterns:  []string{"total revenue", "total income"},
		Priority:  9,
	},
	{
		Name:      "Other Income",
		Statement: model.ProfitLoss,
		Patterns:  []string{"other income", "other operating income", "non-operating income"},
		Exclude:   []string{"total income", "operating income"},
		Priority:  6,
	},
	{
		// "Profit Before Exceptional Items and Tax" must never land here.
		Name:      "Exceptional Items",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"exceptional items",
			"extraordinary items",
			"exceptional and extraordinary items",
			"exceptional items before tax",
		},
		Exclude:  []string{"before exceptional", "profit before", "after exceptional"},
		Priority: 6,
	},

	// Profit and loss: expenses.
	{
		Name:      "Cost of Goods Sold",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"cost of goods sold",
			"cost of materials consumed",
			"cost of material consumed",
			"raw material consumed",
			"raw materials consumed",
			"total raw material consumed",
			"purchases of stock-in-trade",
			"purchases of raw material",
			"purchases of raw materials",
			"cost of revenue",
			"direct material cost",
			"material cost",
			"manufacturing direct expenses",
			"total manufacturing direct expenses",
			"manufacturing / direct expenses",
			"total manufacturing / direct expenses",
			"consumption of stores and spare parts",
			"power oil fuel",
			"direct labour charges",
			"job work processing charges",
			"job work / processing charges",
			"jobwork charges",
			"add purchase & direct cost",
			"other direct costs",
			"otherdirectcosts",
			"total other material consumed",
			"internally manufactured intermediates or components consumed",
			"cost of land plots development and construction",
			"cost of service maintenance and power generation",
			"cost of cinema operations",
			"cost of software package",
			"direct expense on purchase adjustment",
			"processing charges",
			"labour charges",
			"manufactured components",
			"finished products",
		},
		Priority: 8,
	},
	{
		Name:      "Employee Expenses",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"employee benefit expense",
			"employee benefits expense",
			"employee benefits",
			"employee expenses",
			"employee benefits / salaries & other staff cost",
			"staff costs",
			"personnel expenses",
			"wages and salaries",
			"salaries and incentives",
			"salaries wages and bonus",
			"staff welfare expenses",
			"retirement benefits expense",
			"other employee benefit",
			"staff expenses",
			"contributions to provident and other fund",
			"contributions to superannuation scheme",
			"gratuity fund contributions",
			"compensated absences",
			"social security and other benefit plans for overseas employees",
			"directors remuneration",
			"other director's remuneration",
			"directors fees",
			"directors commission",
			"vrs compensation",
			"vrs adjustment",
			"payment towards vrs",
			"share-based payments",
			"expense on employee stock option scheme",
			"expense on employee stock option scheme esop and employee stock purchase plan espp",
			"manpower hire charges",
			"employee recruitment and training expenses",
		},
		Priority: 7,
	},
	{
		Name:      "Depreciation",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"depreciation and amortisation",
			"depreciation and amortization",
			"depreciation & amortisation",
			"depreciation",
			"amortization",
			"d&a",
			"depreciation for the current year",
			"depreciation on tangible assets",
			"depreciation on investment properties",
			"amortisation of intangible assets",
			"amortization of intangible assets",
			"amortisation of investment property",
			"amortisation for the current year",
			"amortization for the current year",
			"depletion for the current year",
			"impairment for the current year",
			"impairment of fixed assets",
			"impairment of tangible assets",
			"impairment of goodwill",
			"impairment of intangible assets",
			"impairment of other assets",
		},
		Exclude:  []string{"accumulated", "prior year", "capitalised", "capitalized"},
		Priority: 7,
	},
	{
		// "Amotisation of Borrowing Costs" is a live Capitaline typo.
		Name:      "Interest Expense",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"finance costs",
			"finance cost",
			"interest expense",
			"interest charges",
			"borrowing costs",
			"financial expenses",
			"total interest expenses",
			"interest on bank borrowings",
			"interest on term / fixed loans",
			"interest on working capital loans",
			"interest and finance charges on financial liabilities",
			"other interest expenses",
			"bank charges",
			"bill discounting charges",
			"financial charges on financial liabilities at amortised cost",
			"financial charges on financial liabilities at amortized cost",
			"interest on bonds and debentures",
			"interest on commercial paper",
			"interest on deposits",
			"interest on external commercial borrowings",
			"interest on finance lease",
			"interest on foreign currency loans",
			"interest on other borrowings",
			"interest on other loans",
			"interest - related parties",
			"other borrowing costs",
			"amotisation of borrowing costs",
			"amortisation of borrowing costs",
			"amortization of borrowing costs",
			"unwinding expenses",
			"redemption premium",
			"guarantee commission",
			"guarantee expenses",
		},
		Priority: 8,
	},
	{
		Name:      "Total Expenses",
		Statement: model.ProfitLoss,
		Patterns:  []string{"total expenses", "total expenditure", "total costs and expenses"},
		Priority:  9,
	},
	{
		Name:      "Other Expenses",
		Statement: model.ProfitLoss,
		Patterns:  []string{"other expenses", "other operating expenses", "miscellaneous expenses"},
		Exclude:   []string{"total", "non-operating"},
		Priority:  5,
	},
	{
		Name:      "Changes in Inventory",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"changes in inventories",
			"change in inventories",
			"(increase)/decrease in inventories",
			"changes in inventories of finished goods, work-in-progress and stock-in-trade",
			"changes in inventories of finished goods work in progress and stock in trade",
		},
		Priority: 5,
	},
	{
		Name:      "Manufacturing Expenses",
		Statement: model.ProfitLoss,
		Patterns:  []string{"manufacturing expenses", "factory overhead", "production overhead"},
		Priority:  4,
	},
	{
		Name:      "Selling Expenses",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"selling expenses",
			"selling and distribution",
			"marketing expenses",
			"total selling & administrative expenses",
			"selling and administration expenses",
			"selling administration expenses",
			"total selling and distribution expenses",
			"total selling distribution expenses",
		},
		Priority: 4,
	},

	// Profit and loss: profit.
	{
		Name:      "Gross Profit",
		Statement: model.ProfitLoss,
		Patterns:  []string{"gross profit", "gross margin"},
		Priority:  7,
	},
	{
		Name:          "Operating Income",
		Statement:     model.ProfitLoss,
		Patterns:      []string{"operating profit", "operating income", "profit from operations", "ebit"},
		Exclude:       []string{"before", "interest", "tax", "d&a"},
		Priority:      8,
		Abbreviations: []string{"ebit"},
	},
	{
		// "profit before tax" is the post-exceptional PBT and must win over
		// the pre-exceptional variant; downstream recasting subtracts
		// exceptional items itself, so mapping the pre-exceptional line
		// double-counts the subtraction. The tiebreak registry enforces the
		// preference when both score equal.
		Name:      "Income Before Tax",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"profit before tax",
			"income before tax",
			"earnings before tax",
			"pbt",
			"profit before taxation",
			"profit before exceptional items and tax",
			"profit before extraordinary items and tax",
		},
		Priority:      9,
		Abbreviations: []string{"pbt"},
	},
	{
		// Must map the total tax line, never Current Tax / Deferred Tax
		// components.
		Name:      "Tax Expense",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"tax expense",
			"tax expenses",
			"income tax expense",
			"provision for tax",
			"total tax expense",
			"income tax",
			"tax on income",
			"other tax adjustments",
			"fringe benefits tax",
		},
		Exclude: []string{
			"deferred tax assets", "deferred tax liabilities", "deferred tax (credit)",
			"current tax - mat", "current tax only",
		},
		Priority: 8,
	},
	{
		Name:      "Net Income",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"profit after tax",
			"net income",
			"profit for the year",
			"profit for the period",
			"net profit",
			"pat",
			"profit attributable to shareholders",
			"profit attributable to equity holders",
			"profit attributable to ordinary shareholders",
			"profit after pre-acquisition profit",
			"profit/(loss) for the period from continuing operations",
		},
		Exclude:       []string{"before tax", "minority", "non-controlling", "discontinued", "extraordinary"},
		Priority:      10,
		Abbreviations: []string{"pat"},
	},
	{
		Name:      "Minority Earnings",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"profit attributable to minority",
			"profit attributable to non-controlling",
			"minority interest in profit",
			"non-controlling interests",
		},
		Priority: 4,
	},
	{
		Name:      "EPS Basic",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"basic eps",
			"earnings per share (basic)",
			"basic earnings per share",
			"earnings per share basic",
			"earning per share basic",
			"earning per share - basic",
			"eps basic",
		},
		Priority: 5,
	},
	{
		Name:      "EPS Diluted",
		Statement: model.ProfitLoss,
		Patterns: []string{
			"diluted eps",
			"earnings per share (diluted)",
			"diluted earnings per share",
			"earnings per share diluted",
			"earning per share diluted",
			"earning per share - diluted",
			"eps diluted",
		},
		Priority: 5,
	},
	{
		Name:      "Dividend",
		Statement: model.ProfitLoss,
		Patterns:  []string{"dividend paid", "dividend per share", "dividends"},
		Exclude:   []string{"dividend income", "dividend received"},
		Priority:  5,
	},

	// Derived-only profit measures.
	{Name: "EBIT", Statement: model.ProfitLoss, Priority: 8},
	{Name: "EBITDA", Statement: model.ProfitLoss, Priority: 8},

	// Cash flow statement.
	{
		Name:      "Operating Cash Flow",
		Statement: model.CashFlow,
		Patterns: []string{
			"net cash from operating activities",
			"cash flow from operating activities",
			"cash generated from operations",
			"cash generated from/(used in) operations",
			"cash inflow from operating activities",
			"net cash generated from operations",
			"net cash used in operating activities",
			"net cash from operations",
			"cash flows from operating activities",
		},
		Priority: 10,
	},
	{
		// Capitaline writes a header row "Capital Expenditure" that is
		// sometimes zero while the spend sits in purchase sub-lines; the
		// fallback registry recovers those.
		Name:      "Capital Expenditure",
		Statement: model.CashFlow,
		Patterns: []string{
			"capital expenditure",
			"purchase of property plant and equipment",
			"purchase of property, plant and equipment",
			"capex",
			"purchase of fixed assets",
			"acquisition of property plant and equipment",
			"purchase of tangible assets",
			"payment for property plant and equipment",
			"capital expenditure capital wip",
			"purchased of fixed assets",
			"purchased of fixed asset",
			"capital wip",
			"capital work in progress",
			"additions to fixed assets",
			"additions to property plant and equipment",
		},
		Exclude:       []string{"sale of", "proceeds from sale", "disposal"},
		Priority:      9,
		Abbreviations: []string{"capex"},
		ZeroSuspect:   true,
	},
	{
		Name:      "Investing Cash Flow",
		Statement: model.CashFlow,
		Patterns: []string{
			"net cash from investing activities",
			"cash flow from investing activities",
			"net cash used in investing activities",
		},
		Priority: 8,
	},
	{
		Name:      "Financing Cash Flow",
		Statement: model.CashFlow,
		Patterns: []string{
			"net cash from financing activities",
			"cash flow from financing activities",
			"net cash used in financing activities",
		},
		Priority: 8,
	},
	{
		Name:          "Free Cash Flow",
		Statement:     model.CashFlow,
		Patterns:      []string{"free cash flow", "fcf"},
		Priority:      6,
		Abbreviations: []string{"fcf"},
	},
	{
		Name:      "Net Change in Cash",
		Statement: model.CashFlow,
		Patterns: []string{
			"net increase in cash",
			"net decrease in cash",
			"net inc/(dec) in cash",
			"net inc dec in cash and cash equivalent",
			"net change in cash and cash equivalents",
			"net increase/(decrease) in cash and cash equivalents",
			"net increase in cash and cash equivalents",
			"net decrease in cash and cash equivalents",
		},
		Priority: 7,
	},
	{
		Name:      "Cash Beginning",
		Statement: model.CashFlow,
		Patterns: []string{
			"cash at beginning",
			"cash and cash equivalents at beginning",
			"opening cash",
			"cash at the beginning of the year",
			"cash and cash equivalents at beginning of the year",
		},
		Priority: 6,
	},
	{
		Name:      "Cash Ending",
		Statement: model.CashFlow,
		Patterns: []string{
			"cash at end",
			"cash and cash equivalents at end",
			"closing cash",
			"cash at the end of the year",
			"cash and cash equivalents at end of the year",
			"cash and cash equivalents at end of the period",
		},
		Priority: 6,
	},
	{
		Name:      "Dividends Paid",
		Statement: model.CashFlow,
		Patterns: []string{
			"dividends paid",
			"dividend paid to shareholders",
			"dividend paid (equity)",
			"dividend paid",
			"preference dividend paid",
			"preference dividend including corporate tax",
		},
		Priority: 5,
	},
	{
		// "Of the Long Tem Borrowings" and friends are truncated Capitaline
		// labels, typos included.
		Name:      "Debt Repayment",
		Statement: model.CashFlow,
		Patterns: []string{
			"repayment of borrowings",
			"repayment of long term borrowings",
			"repayment of term loans",
			"of the long tem borrowings",
			"of the long term borrowings",
			"of the short term borrowings",
			"of the short tem borrowings",
			"of financial liabilities",
			"on redemption of debenture",
			"repayment of debentures",
		},
		Priority: 5,
	},
	{
		// "0ther" with a zero is a live Capitaline typo.
		Name:      "Proceeds from Borrowing",
		Statement: model.CashFlow,
		Patterns: []string{
			"proceeds from borrowings",
			"proceeds from long term borrowings",
			"loans raised",
			"proceeds from issue of shares incl share premium",
			"proceed from bank borrowings",
			"proceed from 0ther long term borrowings",
			"proceed from other long term borrowings",
			"proceed from short tem borrowings",
			"proceed from short term borrowings",
			"proceed from issue of debentures",
			"proceed from deposits",
			"change in borrowing",
			"loans from a corporate body",
		},
		Priority: 5,
	},
	{
		Name:      "Share Buyback",
		Statement: model.CashFlow,
		Patterns:  []string{"buyback of shares", "repurchase of shares", "treasury stock purchase"},
		Priority:  5,
	},

	// Standalone market and share figures.
	{
		Name:      "Market Capitalisation",
		Statement: model.Financial,
		Patterns:  []string{"market capitalisation", "market cap", "market capitalization"},
		Priority:  6,
	},
	{
		Name:          "Book Value Per Share",
		Statement:     model.Financial,
		Patterns:      []string{"book value per share", "bvps", "net asset value per share"},
		Priority:      5,
		Abbreviations: []string{"bvps"},
	},
	{
		Name:      "Face Value",
		Statement: model.Financial,
		Patterns:  []string{"face value", "par value", "nominal value"},
		Priority:  4,
	},
	{
		Name:      "Number of Shares",
		Statement: model.Financial,
		Patterns:  []string{"number of shares", "shares outstanding", "equity shares outstanding", "no. of shares"},
		Priority:  5,
	},
}

// CriticalTargets are the metrics every downstream model needs; coverage
// reporting flags a dataset that leaves any of them unresolved.
var CriticalTargets = []string{
	"Revenue", "Net Income", "Total Assets", "Total Equity",
	"Current Assets", "Current Liabilities", "Operating Cash Flow",
	"Interest Expense", "Income Before Tax", "Share Capital", "Retained Earnings",
}
