// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package oracle adapts the external text-scoring service.

# Scoring

A Scorer wraps a Transport:

	t := oracle.NewOpenAITransport(apiKey, "", "", nil)
	s := oracle.NewScorer(t, oracle.WithTimeout(15*time.Second))
	scores, err := s.Score(ctx, category, title, description)

Score builds the prompt, makes one call, and parses the reply. There is no
retry.

# Prompt

BuildPrompt embeds the category name, title, description, and the
category's 3 questions, and asks for exactly 3 comma-separated integers.

# Parsing

ParseScores trims whitespace, splits on commas and parses each token:

	"4,3,5"     → [4 3 5]
	" 4, 3 ,5 " → [4 3 5]
	"3,2,x"     → models.ErrMalformedOracleResponse
	"4,3"       → models.ErrMalformedOracleResponse
	"4,3,6"     → models.ErrMalformedOracleResponse

# Errors

  - models.ErrOracleUnavailable: transport failure, non-2xx reply, timeout,
    or rate limiter wait aborted
  - models.ErrMalformedOracleResponse: a reply arrived but is not a valid vector

# Transport

OpenAITransport talks to any OpenAI-compatible chat completion API. The
default base URL is Gemini's OpenAI endpoint.
*/
package oracle
