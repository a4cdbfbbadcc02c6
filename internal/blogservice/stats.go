package blogservice

import "golang.org/x/exp/slices"

// AuthorBlogs names the author with the most blogs in a listing.
type AuthorBlogs struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

// AuthorLikes names the author with the most accumulated likes in a listing.
type AuthorLikes struct {
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// TotalLikes sums the likes over a blog listing. An empty listing sums to
// zero.
func TotalLikes(blogs []Blog) int {
	total := 0
	for _, blog := range blogs {
		total += blog.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes, ties broken by first
// occurrence. Returns nil for an empty listing.
func FavoriteBlog(blogs []Blog) *Blog {
	if len(blogs) == 0 {
		return nil
	}

	favorite := slices.MaxFunc(blogs, func(a, b Blog) int {
		return a.Likes - b.Likes
	})

	return &favorite
}

// MostBlogs returns the author with the largest number of blogs, ties broken
// by first occurrence. Returns nil for an empty listing.
func MostBlogs(blogs []Blog) *AuthorBlogs {
	if len(blogs) == 0 {
		return nil
	}

	counts := map[string]int{}
	authors := []string{}

	for _, blog := range blogs {
		if _, ok := counts[blog.Author]; !ok {
			authors = append(authors, blog.Author)
		}
		counts[blog.Author]++
	}

	best := slices.MaxFunc(authors, func(a, b string) int {
		return counts[a] - counts[b]
	})

	return &AuthorBlogs{Author: best, Blogs: counts[best]}
}

// MostLikes returns the author whose blogs have accumulated the most likes,
// ties broken by first occurrence. Returns nil for an empty listing.
func MostLikes(blogs []Blog) *AuthorLikes {
	if len(blogs) == 0 {
		return nil
	}

	likes := map[string]int{}
	authors := []string{}

	for _, blog := range blogs {
		if _, ok := likes[blog.Author]; !ok {
			authors = append(authors, blog.Author)
		}
		likes[blog.Author] += blog.Likes
	}

	best := slices.MaxFunc(authors, func(a, b string) int {
		return likes[a] - likes[b]
	})

	return &AuthorLikes{Author: best, Likes: likes[best]}
}
