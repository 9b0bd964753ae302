// Package openai implements the OpenAI chat-completions transport.
//
// The transport sends one POST to {base_url}/chat/completions per attempt
// with a single user message, temperature and max_tokens, authenticated with
// a bearer token. An optional organization is sent as OpenAI-Organization.
// Retrying is left to providers.Client.
//
// # Basic Usage
//
//	transport, err := openai.NewTransport(providers.ProviderConfig{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer transport.Close()
//
//	client := providers.NewClient(transport, providers.DefaultRetryPolicy())
//	result, err := client.Complete(ctx, providers.NewCompletionRequest("Hello!"))
//
// Any OpenAI-compatible server can be used by setting BaseURL.
package openai
