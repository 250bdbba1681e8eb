/*
Package model provides vectorization backends turning item documents into feature matrices.

Both backends share a CountVectorizer over normalized tokens:

  - TFIDF weights raw term counts by smoothed inverse document frequency.
  - LDA fits a batch variational Bayes topic model and returns document-topic distributions.
*/
package model
