// Package translation loads pretrained opus-mt translation models on demand,
// keeps them in a per-process cache and runs beam-search translation through
// them. Model inference is delegated to a remote backend (Hugging Face
// inference, OpenAI or Gemini) behind the Tokenizer and Model interfaces.
package translation
