package model

// DefaultCompanies is the built-in universe used when the config lists none.
func DefaultCompanies() []Company {
	f := func(v float64) *float64 { return &v }
	return []Company{
		{Symbol: "AAPL", Name: "Apple Inc.", Sector: "Technology", BasePrice: 185.50,
			MarketCap: f(2.8e12), PERatio: f(28.5), DividendYield: f(0.5), Beta: f(1.2), EPS: f(6.50)},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Sector: "Technology", BasePrice: 142.80,
			MarketCap: f(1.65e12), PERatio: f(22.8), DividendYield: f(0.0), Beta: f(1.1), EPS: f(6.26)},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Sector: "Technology", BasePrice: 338.11,
			MarketCap: f(2.5e12), PERatio: f(32.1), DividendYield: f(0.7), Beta: f(0.9), EPS: f(10.55)},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Sector: "Consumer Discretionary", BasePrice: 135.30,
			MarketCap: f(1.4e12), PERatio: f(45.2), DividendYield: f(0.0), Beta: f(1.3), EPS: f(2.99)},
		{Symbol: "TSLA", Name: "Tesla Inc.", Sector: "Consumer Discretionary", BasePrice: 248.50,
			MarketCap: f(7.8e11), PERatio: f(65.8), DividendYield: f(0.0), Beta: f(2.0), EPS: f(3.77)},
		{Symbol: "META", Name: "Meta Platforms Inc.", Sector: "Communication Services", BasePrice: 325.20,
			MarketCap: f(8.2e11), PERatio: f(24.7), DividendYield: f(0.4), Beta: f(1.2), EPS: f(13.18)},
		{Symbol: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology", BasePrice: 735.00,
			MarketCap: f(1.8e12), PERatio: f(68.2), DividendYield: f(0.1), Beta: f(1.7), EPS: f(10.78)},
		{Symbol: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financial Services", BasePrice: 158.75,
			MarketCap: f(4.6e11), PERatio: f(11.5), DividendYield: f(2.4), Beta: f(1.1), EPS: f(13.80)},
		{Symbol: "JNJ", Name: "Johnson & Johnson", Sector: "Healthcare", BasePrice: 164.20,
			MarketCap: f(4.2e11), PERatio: f(16.8), DividendYield: f(2.8), Beta: f(0.7), EPS: f(9.77)},
		{Symbol: "V", Name: "Visa Inc.", Sector: "Financial Services", BasePrice: 235.60,
			MarketCap: f(4.8e11), PERatio: f(29.3), DividendYield: f(0.8), Beta: f(1.0), EPS: f(8.04)},
	}
}
