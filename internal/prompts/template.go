package prompts

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
)

// LocalSource is the built-in template+fillword generator. It never fails and
// backs the remote generator as its fallback.
type LocalSource struct{}

func NewLocalSource() *LocalSource { return &LocalSource{} }

var promptTemplates = []string{
	"The worst thing to say during %s",
	"A rejected name for %s",
	"The real reason %s was cancelled",
	"What %s smells like",
	"The secret ingredient in %s",
	"A terrible slogan for %s",
	"The first rule of %s club",
	"What your grandma thinks %s means",
	"The worst prize to win at %s",
	"A surprising fact about %s",
	"The sequel to %s nobody asked for",
	"What's hiding at the bottom of %s",
	"An unfortunate autocorrect for %s",
	"The last thing you want to hear from %s",
	"A banned flavor of %s",
	"The weirdest thing to whisper about %s",
	"Why %s got kicked out of the party",
	"The headline after %s went wrong",
	"A motivational poster caption for %s",
	"What robots dream about instead of %s",
}

var fillWords = []string{
	"a job interview", "the moon landing", "karaoke night", "your dentist",
	"a haunted house", "the office printer", "a cooking show", "pirate radio",
	"hot yoga", "the school reunion", "a silent disco", "airport security",
	"a magic show", "the neighborhood barbecue", "speed dating", "a royal wedding",
	"the gym", "jury duty", "a camping trip", "the talent show",
	"grandpa's attic", "a submarine", "the drive-thru", "a wizard's garage sale",
}

var flashbackSetups = []string{
	"The town had never seen anything like it, until one morning...",
	"Everyone agreed the plan was foolproof, right up to the moment when...",
	"It started as an ordinary Tuesday, and then the mayor announced...",
	"The instructions on the box were clear, but nobody expected...",
	"Deep in the basement, behind the old boiler, they finally found...",
	"The band was halfway through their biggest song when suddenly...",
	"According to the captain's log, the trouble began when...",
}

// GeneratePrompts returns count distinct prompts not present in seen, marking
// each as used.
func (s *LocalSource) GeneratePrompts(ctx context.Context, count int, seen map[string]struct{}, theme string) ([]string, error) {
	out := make([]string, 0, count)
	for len(out) < count {
		text := s.onePrompt(theme)
		if _, used := seen[text]; used {
			// Collisions get rarer as the pool is template x fillword; after
			// enough rejections salt the prompt to force uniqueness.
			text = s.saltPrompt(text, seen)
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out, nil
}

func (s *LocalSource) onePrompt(theme string) string {
	tpl := promptTemplates[rand.Intn(len(promptTemplates))]
	fill := fillWords[rand.Intn(len(fillWords))]
	if theme != "" && rand.Intn(2) == 0 {
		fill = theme
	}
	return fmt.Sprintf(tpl, fill)
}

func (s *LocalSource) saltPrompt(text string, seen map[string]struct{}) string {
	for i := 2; ; i++ {
		salted := fmt.Sprintf("%s (take %d)", text, i)
		if _, used := seen[salted]; !used {
			return salted
		}
	}
}

// GenerateLastLash picks a finale mode uniformly and builds its prompt.
func (s *LocalSource) GenerateLastLash(ctx context.Context, seen map[string]struct{}, theme string) (Finale, error) {
	switch rand.Intn(3) {
	case 0:
		prompt := flashbackSetups[rand.Intn(len(flashbackSetups))]
		seen[prompt] = struct{}{}
		return Finale{
			Prompt:       prompt,
			Mode:         ModeFlashback,
			Instructions: "Finish the story!",
		}, nil
	case 1:
		letters := randomLetters(3)
		return Finale{
			Prompt:       "Write a phrase where the first three words start with these letters",
			Mode:         ModeWordLash,
			Letters:      letters,
			Instructions: fmt.Sprintf("Your first three words must start with %s", strings.Join(letters, ", ")),
		}, nil
	default:
		n := 3 + rand.Intn(3)
		letters := randomLetters(n)
		return Finale{
			Prompt:       fmt.Sprintf("What does %s stand for?", strings.Join(letters, ".")+"."),
			Mode:         ModeAcroLash,
			Letters:      letters,
			Instructions: fmt.Sprintf("Expand the acronym %s", strings.Join(letters, "")),
		}, nil
	}
}

// randomLetters draws n uppercase letters with no two consecutive repeats.
func randomLetters(n int) []string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	out := make([]string, n)
	prev := byte(0)
	for i := range out {
		for {
			c := alphabet[rand.Intn(len(alphabet))]
			if c != prev {
				out[i] = string(c)
				prev = c
				break
			}
		}
	}
	return out
}
