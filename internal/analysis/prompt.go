// Package analysis produces daily media reports: it prompts the model
// with a publisher's cleaned articles and parses the key-value reply into
// a structured report.
package analysis

import (
	"fmt"
	"strings"
)

// ArticleCharLimit caps how much of each article the prompt carries.
// Chunks of 60 articles at 400 chars stay inside the model's input budget.
const ArticleCharLimit = 400

// DefaultChunkSize is the maximum number of articles per model call.
const DefaultChunkSize = 60

const promptPersona = "You are a veteran media analyst with over 20 years of experience in journalism and media studies, specializing in identifying narratives, sentiment, bias, and cultural values in news reporting.\n" +
	"You maintain strict political neutrality in your analysis, ensuring that you do not favor any political side, ideology, or group, focusing solely on objective insights.\n" +
	"Your task is to analyze the following %s articles from %s and produce a DETAILED, SOURCE-SPECIFIC DAILY MEDIA REPORT in this EXACT key-value pair format, one per line:\n"

var promptSchema = strings.Join([]string{
	"numbers_of_articles=[total]",
	"main_narrative_theme_1=[theme_name]",
	"main_narrative_coverage_1=[percentage]",
	"main_narrative_examples_1=[full_article_title1,full_article_title2,...]",
	"main_narrative_theme_2=[theme_name]",
	"main_narrative_coverage_2=[percentage]",
	"main_narrative_examples_2=[full_article_title1,full_article_title2,...]",
	"main_narrative_theme_3=[theme_name]",
	"main_narrative_coverage_3=[percentage]",
	"main_narrative_examples_3=[full_article_title1,full_article_title2,...]",
	"main_narrative_theme_4=[theme_name]",
	"main_narrative_coverage_4=[percentage]",
	"main_narrative_examples_4=[full_article_title1,full_article_title2,...]",
	"main_narrative_theme_5=[theme_name]",
	"main_narrative_coverage_5=[percentage]",
	"main_narrative_examples_5=[full_article_title1,full_article_title2,...]",
	"main_narrative_confidence=[float between 0.8 and 1.0]",
	"sentiment_positive_percentage=[percentage]",
	"sentiment_negative_percentage=[percentage]",
	"sentiment_neutral_percentage=[percentage]",
	"sentiment_confidence=[float between 0.8 and 1.0]",
	"bias_political_score=[float between -5 and 5, where -5 is far left and 5 is far right]",
	"bias_political_leaning=[label based on the following scale: -5: 'Far Left', -4: 'Left', -3: 'Center-Left', -2: 'Lean Left', -1: 'Slight Left', 0: 'Neutral', 1: 'Slight Right', 2: 'Lean Right', 3: 'Center-Right', 4: 'Right', 5: 'Far Right']",
	"bias_supporting_evidence=[evidence1,evidence2,...]",
	"bias_confidence=[float between 0.8 and 1.0]",
	"values_promoted_value_1=[value_name]",
	"values_promoted_examples_1=[full_article_title1,full_article_title2,...]",
	"values_promoted_value_2=[value_name]",
	"values_promoted_examples_2=[full_article_title1,full_article_title2,...]",
	"values_promoted_value_3=[value_name]",
	"values_promoted_examples_3=[full_article_title1,full_article_title2,...]",
	"values_promoted_confidence=[float between 0.8 and 1.0]",
}, "\n")

const promptRules = "- Use the key-value pair format exactly as shown, one per line.\n" +
	"- Include exactly 5 distinct, source-specific themes under main_narrative based on ALL articles, reflecting the overarching narrative, context, and bias of %[1]s's articles from %[2]s.\n" +
	"- Include exactly 3 values under values_promoted based on ALL articles, specific to %[1]s from %[2]s.\n" +
	"- Confidence scores must be floats between 0.8 and 1.0.\n" +
	"- Use full article titles from the articles in examples, comma-separated.\n" +
	"- Ensure the analysis captures the overall narrative, context, and bias of %[1]s across all articles from %[2]s, not injecting current or unrelated topics.\n" +
	"- Be concise (up to 300-350 words), summarizing key insights and full context from all %[1]s's %[2]s articles.\n" +
	"- Only include themes, biases, or values present in %[1]s's %[2]s articles.\n" +
	"- If API data is missing or empty, log the error, skip analysis, and return only numbers_of_articles with an error flag—DO NOT use defaults or fabricate data.\n" +
	"- Provide all fields, leaving them empty (not defaults) if data is missing due to API failure.\n"

var promptExample = strings.Join([]string{
	"numbers_of_articles=19",
	"main_narrative_theme_1=Anti-Palestinian narratives",
	"main_narrative_coverage_1=25.0",
	"main_narrative_examples_1=Hamas breaks peace agreement with Israel",
	"main_narrative_theme_2=Russian invasion of Ukraine",
	"main_narrative_coverage_2=20.0",
	"main_narrative_examples_2=Ukraine succesfully repels Russian attack at Kharkiv",
	"main_narrative_theme_3=Illigal Imigration",
	"main_narrative_coverage_3=20.0",
	"main_narrative_examples_3=Illigal immigrants cause crime in the country",
	"main_narrative_theme_4=Environmental concerns",
	"main_narrative_coverage_4=15.0",
	"main_narrative_examples_4=What causes the global warming?",
	"main_narrative_theme_5=Pro-Trump narratives",
	"main_narrative_coverage_5=20.0",
	"main_narrative_examples_5=Successful economic policies from Trump decrease inflation",
	"main_narrative_confidence=0.9",
	"sentiment_positive_percentage=30.0",
	"sentiment_negative_percentage=50.0",
	"sentiment_neutral_percentage=20.0",
	"sentiment_confidence=0.85",
	"bias_political_score=4.5",
	"bias_political_leaning=Right",
	"bias_supporting_evidence=Emphasis on traditional values and illigal immigration",
	"bias_confidence=0.88",
	"values_promoted_value_1=Public Safety",
	"values_promoted_examples_1=New knife laws will make difference, says victim's sister",
	"values_promoted_value_2=Support for Ukraine",
	"values_promoted_examples_2=The president offers Ukraine military help to press Russia to negotiation table",
	"values_promoted_value_3=Freedom",
	"values_promoted_examples_3=The president wants to limit state's power over people",
	"values_promoted_confidence=0.87",
}, "\n")

// truncateRunes limits s to n runes without splitting a multibyte
// character.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// BuildPrompt assembles the analysis prompt for one chunk of a
// publisher's articles. humanDate is the analysis day formatted as
// "January 2, 2006".
func BuildPrompt(source, humanDate string, articles []string) string {
	var list strings.Builder
	n := 0
	for _, art := range articles {
		if art == "" {
			continue
		}
		n++
		fmt.Fprintf(&list, "Article %d: %s...\n", n, truncateRunes(art, ArticleCharLimit))
	}
	body := strings.TrimRight(list.String(), "\n")
	if body == "" {
		body = "No articles found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, promptPersona, source, humanDate)
	b.WriteString("\n")
	b.WriteString(promptSchema)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "ARTICLES (use full, untruncated titles in examples, based only on data from %s, limited to %d characters each):\n",
		humanDate, ArticleCharLimit)
	b.WriteString(body)
	b.WriteString("\n\nSTRICT RULES:\n")
	fmt.Fprintf(&b, promptRules, source, humanDate)
	b.WriteString("\nFORMAT EXAMPLE:\n")
	b.WriteString(promptExample)
	return b.String()
}
