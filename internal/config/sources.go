package config

// DefaultSources is the built-in publisher roster used when the config file
// does not define any sources. Feed URLs mirror each publisher's public RSS
// endpoints; paywalled outlets ship disabled.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:    "fox_news",
			Enabled: true,
			Feeds: []FeedConfig{
				{Name: "politics", URL: "https://feeds.foxnews.com/foxnews/politics"},
			},
		},
		{
			Name:    "nbc",
			Enabled: true,
			Feeds: []FeedConfig{
				{Name: "news", URL: "https://www.nbcnews.com/news/world?format=rss"},
			},
		},
		{
			Name:    "bbc",
			Enabled: true,
			Feeds: []FeedConfig{
				{Name: "world", URL: "https://feeds.bbci.co.uk/news/world/rss.xml"},
			},
		},
		{
			Name:    "dw",
			Enabled: true,
			Feeds: []FeedConfig{
				{Name: "general", URL: "https://rss.dw.com/rdf/rss-en-all"},
			},
		},
		{
			Name:    "france",
			Enabled: true,
			Feeds: []FeedConfig{
				{Name: "world", URL: "https://www.france24.com/en/rss"},
			},
		},
		{
			Name:    "daily_wire",
			Enabled: true,
			Feeds: []FeedConfig{
				{Name: "main", URL: "https://www.dailywire.com/feeds/rss.xml"},
			},
		},
		{
			Name:    "new_york_times",
			Enabled: false,
			Feeds: []FeedConfig{
				{Name: "homepage", URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"},
			},
		},
		{
			Name:    "wsj",
			Enabled: false,
			Feeds: []FeedConfig{
				{Name: "opinion", URL: "https://feeds.content.dowjones.io/public/rss/RSSOpinion"},
			},
		},
		{
			Name:    "financial_times",
			Enabled: false,
			Feeds: []FeedConfig{
				{Name: "world", URL: "https://www.ft.com/world?format=rss"},
			},
		},
		{
			Name:    "christian_post",
			Enabled: false,
			Feeds: []FeedConfig{
				{Name: "world", URL: "https://www.christianpost.com/category/world/rss"},
			},
		},
	}
}
