// Package deepseek implements the DeepSeek chat-completions transport.
//
// DeepSeek speaks the OpenAI wire format at https://api.deepseek.com with
// two additions this package surfaces: reasoning_content on messages from
// deepseek-reasoner, and prompt cache hit/miss token counts in usage.
package deepseek
