package questions

import (
	"fmt"

	"github.com/spigell/interviewer/internal/interview"
)

// Entry is one prompt of a tier pool.
type Entry struct {
	Text     string   `mapstructure:"text"`
	Keywords []string `mapstructure:"keywords"`
	Coding   bool     `mapstructure:"coding"`
}

// Pools holds the question pools per difficulty tier.
type Pools struct {
	Easy   []Entry `mapstructure:"easy"`
	Medium []Entry `mapstructure:"medium"`
	Hard   []Entry `mapstructure:"hard"`
}

// Tier returns the pool of the given difficulty.
func (p Pools) Tier(d interview.Difficulty) []Entry {
	switch d {
	case interview.Easy:
		return p.Easy
	case interview.Medium:
		return p.Medium
	case interview.Hard:
		return p.Hard
	default:
		return nil
	}
}

// Validate ensures every tier can supply count distinct entries.
func (p Pools) Validate(count int) error {
	for _, d := range interview.Difficulties {
		pool := p.Tier(d)
		if len(pool) < count {
			return fmt.Errorf("%s pool has %d questions, at least %d required", d, len(pool), count)
		}
		for i, entry := range pool {
			if entry.Text == "" {
				return fmt.Errorf("%s pool entry %d has empty text", d, i)
			}
		}
	}
	return nil
}

func entries(texts ...string) []Entry {
	out := make([]Entry, len(texts))
	for i, text := range texts {
		out[i] = Entry{Text: text}
	}
	return out
}

// DefaultPools returns the built-in question pools.
func DefaultPools() Pools {
	return Pools{
		Easy: entries(
			"What is the difference between let, const, and var in JavaScript? Explain with examples.",
			"Explain the concept of React hooks. What are the benefits of using hooks over class components?",
			"What is the difference between == and === in JavaScript? Provide examples.",
			"Explain what is a closure in JavaScript with a simple example.",
			"What is the virtual DOM in React and why is it beneficial?",
			"What are the different data types in JavaScript? Explain each with examples.",
			"Explain the concept of hoisting in JavaScript.",
			"What is the difference between function declaration and function expression?",
			"What are React components and what are the different types?",
			"Explain the concept of props in React with examples.",
			"Explain the difference between shallow copy and reference copy in JavaScript objects.",
			"What is the purpose of the key prop in React lists?",
			"What is the difference between for...of and for...in loops in JavaScript?",
		),
		Medium: entries(
			"What is REST API? Explain the principles of RESTful architecture and give examples of HTTP methods.",
			"Explain the concept of promises in JavaScript. How do they help with asynchronous programming?",
			"What is the difference between controlled and uncontrolled components in React?",
			"Explain the concept of event delegation in JavaScript with examples.",
			"What is the difference between map(), filter(), and reduce() in JavaScript? Provide examples.",
			"Explain the React component lifecycle methods and their use cases.",
			"What is the difference between null and undefined in JavaScript?",
			"Explain the concept of prototypal inheritance in JavaScript.",
			"What are React keys and why are they important when rendering lists?",
			"Explain the concept of debouncing and throttling in JavaScript.",
		),
		Hard: entries(
			"Explain the concept of closures in JavaScript. Provide a practical example of where you would use closures in a real application and explain why they are useful.",
			"What is the difference between call(), apply(), and bind() methods in JavaScript? Provide examples of when you would use each.",
			"Explain how JavaScript's event loop works. What are the differences between the call stack, callback queue, and microtask queue?",
			"What are higher-order components (HOCs) in React? Provide an example and explain when you would use them.",
			"Explain the concept of currying in JavaScript with practical examples.",
			"What is the difference between shallow copy and deep copy in JavaScript? How would you implement a deep copy function?",
			"Explain React's reconciliation algorithm and how it optimizes rendering performance.",
			"What are JavaScript generators and iterators? Provide examples of their usage.",
			"Explain the concept of memoization and how it can be implemented in JavaScript.",
			"What is the difference between synchronous and asynchronous JavaScript? Explain with examples of callbacks, promises, and async/await.",
			"What are design patterns commonly used in JavaScript/React applications?",
		),
	}
}
